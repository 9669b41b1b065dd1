package toolbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/johndanger/developer-toolbox/options"
)

// ImageOps is the contract the orchestrator needs from the image builder.
type ImageOps interface {
	Build(ctx context.Context, opts *options.BuildImage, contextDir string, stdout, stderr io.Writer) error
	Exists(ctx context.Context, imageName string) (bool, error)
}

type podmanImageOps struct{}

// NewPodmanImageOps returns an ImageOps backed by the `podman` CLI.
func NewPodmanImageOps() ImageOps {
	return &podmanImageOps{}
}

// Build runs `podman build` with the given options against contextDir.
func (p *podmanImageOps) Build(ctx context.Context, opts *options.BuildImage, contextDir string, stdout, stderr io.Writer) error {
	var args []string
	if opts != nil {
		args = options.ToArgs(*opts)
	}
	args = append([]string{"build"}, append(args, contextDir)...)
	cmd := exec.CommandContext(ctx, "podman", args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	slog.InfoContext(ctx, "podmanImageOps.Build", "cmd", strings.Join(cmd.Args, " "))
	if err := cmd.Run(); err != nil {
		slog.ErrorContext(ctx, "podmanImageOps.Build", "error", err)
		return err
	}
	return nil
}

// Exists reports whether imageName is present in local storage.
func (p *podmanImageOps) Exists(ctx context.Context, imageName string) (bool, error) {
	cmd := exec.CommandContext(ctx, "podman", "image", "exists", imageName)
	slog.InfoContext(ctx, "podmanImageOps.Exists", "cmd", strings.Join(cmd.Args, " "))
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ValidateImageName checks that imageName parses as a container image
// reference before anything gets built with it.
func ValidateImageName(imageName string) error {
	if _, err := name.ParseReference(imageName); err != nil {
		return fmt.Errorf("invalid image name %q: %w", imageName, err)
	}
	return nil
}
