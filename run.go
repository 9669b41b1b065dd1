package toolbox

import (
	"context"
	"time"

	"github.com/johndanger/developer-toolbox/catalog"
)

// Phase identifies a stage of an installation run.
type Phase string

const (
	PhaseBuild  Phase = "build"
	PhaseCreate Phase = "create"
	PhaseExport Phase = "export"
	PhaseDone   Phase = "done"
)

// Status is the outcome of one unit of work within a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is the overall outcome of a run. Success and PartialSuccess both map
// to a zero exit code; only Failed is fatal.
type Result string

const (
	ResultSuccess        Result = "success"
	ResultPartialSuccess Result = "partial-success"
	ResultFailed         Result = "failed"
)

// Outcome records what happened to one component during the export phase.
type Outcome struct {
	Status Status
	Reason string
}

// Run is the unit of work for one `devbox install` invocation.
type Run struct {
	// Name is a human-readable identifier for the run, used in logs and the
	// run history.
	Name string
	// Selection is the ordered set of components to install.
	Selection catalog.Selection
	// LanguageServers is the language server selection; retained even when no
	// selected component consumes language servers (a warning, not an error).
	LanguageServers []string
	// Force recreates an existing container without prompting.
	Force bool
	// SkipExport skips the export phase entirely.
	SkipExport bool
	// MountContainers opts in to mounting host container sockets into the box.
	MountContainers bool
	// ContainerName and ImageName identify the environment. Singletons per
	// host; two concurrent runs against the same name are a user error.
	ContainerName string
	ImageName     string

	StartedAt  time.Time
	FinishedAt time.Time
	Result     Result
	// Outcomes accumulates per-component export results, keyed by canonical id.
	Outcomes map[string]Outcome
	// exportOrder remembers insertion order so reporting matches the order
	// export attempts were made.
	exportOrder []string
}

func (r *Run) RecordOutcome(id string, status Status, reason string) {
	if r.Outcomes == nil {
		r.Outcomes = map[string]Outcome{}
	}
	if _, ok := r.Outcomes[id]; !ok {
		r.exportOrder = append(r.exportOrder, id)
	}
	r.Outcomes[id] = Outcome{Status: status, Reason: reason}
}

// FailedComponents returns the ids whose export failed, in export order.
func (r *Run) FailedComponents() []string {
	var out []string
	for _, id := range r.exportOrder {
		if r.Outcomes[id].Status == StatusFailed {
			out = append(out, id)
		}
	}
	return out
}

// ExportedComponents returns the ids in the order export was attempted.
func (r *Run) ExportedComponents() []string {
	return append([]string(nil), r.exportOrder...)
}

// Event is a structured progress notification emitted by the orchestrator.
// Tests assert on event ordering and counts instead of on output text.
type Event struct {
	Phase     Phase
	Component string
	Status    Status
	Err       error
}

// Reporter receives progress events from the orchestrator.
type Reporter interface {
	Event(ctx context.Context, ev Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, ev Event)

func (f ReporterFunc) Event(ctx context.Context, ev Event) {
	f(ctx, ev)
}

type nullReporter struct{}

func (nullReporter) Event(context.Context, Event) {}
