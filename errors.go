package toolbox

import (
	"errors"
	"fmt"
)

var (
	// ErrBuildFailed indicates the image build step failed. Fatal: the run
	// stops immediately.
	ErrBuildFailed = errors.New("image build failed")
	// ErrContainerCreateFailed indicates the container could not be created.
	// Fatal: the run stops immediately.
	ErrContainerCreateFailed = errors.New("container create failed")
)

// ExportError records a single component's export failure. Export errors are
// accumulated per component and never abort the run.
type ExportError struct {
	Component string
	Err       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed for %s: %v", e.Component, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
