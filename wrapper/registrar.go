package wrapper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"text/template"

	"github.com/johndanger/developer-toolbox/catalog"
)

var (
	// ErrAlreadyRegistered reports that the IDE is already wrapped. Benign:
	// re-registration is an explicit no-op, never a double-wrap.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrNotWrappable reports that the component has no extension CLI to
	// reconcile, so wrapping it would accomplish nothing.
	ErrNotWrappable = errors.New("component is not wrappable")
)

// launcherTemplate is the generated wrapper installed in place of the IDE
// binary. The IDE identity and real binary path are baked in as data at
// registration time, so the activation runtime never has to infer them from
// its own invocation name.
const launcherTemplate = `#!/bin/sh
# Generated by devbox. Do not edit: re-run "devbox wrap" to regenerate.
exec {{.DevboxPath}} activate --ide {{.IDE}} --real {{.RealPath}} -- "$@"
`

// Registrar wraps installed GUI IDE binaries so first launch triggers
// deferred extension reconciliation.
type Registrar struct {
	stateDir   string
	devboxPath string
	fileOps    FileOps
	registry   *Registry
	tmpl       *template.Template
}

// NewRegistrar returns a Registrar that keeps sidecar binaries, generated
// launchers and the registration registry under stateDir. devboxPath is the
// devbox executable baked into each generated launcher.
func NewRegistrar(stateDir, devboxPath string, fileOps FileOps) *Registrar {
	if fileOps == nil {
		fileOps = NewDefaultFileOps()
	}
	return &Registrar{
		stateDir:   stateDir,
		devboxPath: devboxPath,
		fileOps:    fileOps,
		registry:   NewRegistry(stateDir, fileOps),
		tmpl:       template.Must(template.New("launcher").Parse(launcherTemplate)),
	}
}

// Registry exposes the registrar's registration store.
func (r *Registrar) Registry() *Registry {
	return r.registry
}

func (r *Registrar) sidecarPath(ide string) string {
	return filepath.Join(r.stateDir, "real", ide)
}

func (r *Registrar) wrapperPath(ide string) string {
	return filepath.Join(r.stateDir, "wrappers", ide)
}

// Register wraps the IDE binary at originalPath. If a previous registration
// exists (the path is already a symlink to our wrapper, or a sidecar real
// binary exists) it returns the existing registration and
// ErrAlreadyRegistered without touching anything. Any mid-flight failure
// rolls back the prior steps so the IDE stays launchable.
func (r *Registrar) Register(ctx context.Context, ide, originalPath string) (Registration, error) {
	component, ok := catalog.Get(ide)
	if !ok {
		return Registration{}, &catalog.UnknownComponentError{Token: ide}
	}
	if !component.Extensions {
		return Registration{}, fmt.Errorf("%w: %s has no extension CLI", ErrNotWrappable, ide)
	}

	sidecar := r.sidecarPath(ide)
	wrapperPath := r.wrapperPath(ide)

	already, err := r.alreadyRegistered(originalPath, sidecar, wrapperPath)
	if err != nil {
		return Registration{}, err
	}
	if already {
		slog.InfoContext(ctx, "Registrar.Register: already registered", "ide", ide)
		reg, ok, err := r.registry.Get(ide)
		if err != nil {
			return Registration{}, err
		}
		if !ok {
			// Filesystem says wrapped but the registry lost the record;
			// reconstruct it.
			reg = Registration{IDE: ide, OriginalPath: originalPath, RealBinaryPath: sidecar, WrapperPath: wrapperPath}
			if err := r.registry.Put(reg); err != nil {
				return Registration{}, err
			}
		}
		return reg, ErrAlreadyRegistered
	}

	if _, err := r.fileOps.Stat(originalPath); err != nil {
		return Registration{}, fmt.Errorf("cannot wrap %s: %w", ide, err)
	}

	for _, dir := range []string{filepath.Dir(sidecar), filepath.Dir(wrapperPath)} {
		if err := r.fileOps.MkdirAll(dir, 0o750); err != nil {
			return Registration{}, err
		}
	}

	// Step 1: move the original binary to its sidecar path.
	if err := r.fileOps.Rename(originalPath, sidecar); err != nil {
		return Registration{}, fmt.Errorf("failed to move %s aside: %w", originalPath, err)
	}

	restore := func() {
		if err := r.fileOps.Rename(sidecar, originalPath); err != nil {
			slog.ErrorContext(ctx, "Registrar.Register rollback failed", "ide", ide, "error", err)
		}
	}

	// Step 2: write the generated launcher with identity baked in.
	var launcher bytes.Buffer
	if err := r.tmpl.Execute(&launcher, struct {
		DevboxPath, IDE, RealPath string
	}{r.devboxPath, ide, sidecar}); err != nil {
		restore()
		return Registration{}, err
	}
	if err := r.fileOps.WriteFile(wrapperPath, launcher.Bytes(), 0o755); err != nil {
		restore()
		return Registration{}, fmt.Errorf("failed to write wrapper: %w", err)
	}

	// Step 3: replace the original path with a symlink to the wrapper.
	if err := r.fileOps.Symlink(wrapperPath, originalPath); err != nil {
		r.fileOps.Remove(wrapperPath)
		restore()
		return Registration{}, fmt.Errorf("failed to install wrapper symlink: %w", err)
	}

	reg := Registration{
		IDE:            ide,
		OriginalPath:   originalPath,
		RealBinaryPath: sidecar,
		WrapperPath:    wrapperPath,
	}
	if err := r.registry.Put(reg); err != nil {
		r.fileOps.Remove(originalPath)
		r.fileOps.Remove(wrapperPath)
		restore()
		return Registration{}, fmt.Errorf("failed to persist registration: %w", err)
	}

	slog.InfoContext(ctx, "Registrar.Register: wrapped", "ide", ide, "original", originalPath, "sidecar", sidecar)
	return reg, nil
}

func (r *Registrar) alreadyRegistered(originalPath, sidecar, wrapperPath string) (bool, error) {
	if fi, err := r.fileOps.Lstat(originalPath); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		target, err := r.fileOps.Readlink(originalPath)
		if err == nil && target == wrapperPath {
			return true, nil
		}
	}
	if _, err := r.fileOps.Stat(sidecar); err == nil {
		return true, nil
	}
	return false, nil
}
