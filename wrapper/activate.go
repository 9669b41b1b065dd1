package wrapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// DisableEnvVar disables the deferred extension auto-install when set to an
// affirmative value ("1" or "true"). Unset or anything else means enabled.
const DisableEnvVar = "DEVBOX_NO_AUTO_EXTENSIONS"

// ErrRealBinaryMissing reports that the sidecar real binary the wrapper
// stands in for is gone. The launch must fail loudly, not hang or no-op.
var ErrRealBinaryMissing = errors.New("real binary missing")

// AutoInstallDisabled reports whether the activation engine is disabled by
// configuration.
func AutoInstallDisabled(getenv func(string) string) bool {
	v := strings.ToLower(strings.TrimSpace(getenv(DisableEnvVar)))
	return v == "1" || v == "true"
}

// Activator is the wrapper runtime executed on every launch of a wrapped IDE.
// It hands off to the real binary immediately and schedules reconciliation in
// a detached background process.
type Activator struct {
	fileOps FileOps
	getenv  func(string) string
	// execFn replaces the current process with the real binary. Replaceable
	// for tests; the default is syscall.Exec.
	execFn func(bin string, argv []string, env []string) error
	// spawnFn starts the detached reconciler. Replaceable for tests.
	spawnFn func(ctx context.Context, ide string) error
}

// NewActivator returns an Activator with production defaults.
func NewActivator() *Activator {
	return &Activator{
		fileOps: NewDefaultFileOps(),
		getenv:  os.Getenv,
		execFn:  syscall.Exec,
		spawnFn: spawnDetachedReconciler,
	}
}

// Activate launches the real binary for ide with args. The real binary
// replaces this process, so its output and exit code are indistinguishable
// from launching it directly. Reconciliation is scheduled first, in a process
// that survives the exec.
func (a *Activator) Activate(ctx context.Context, ide, realPath string, args []string) error {
	if realPath == "" {
		return fmt.Errorf("%w: no real binary path for %s", ErrRealBinaryMissing, ide)
	}
	if _, err := a.fileOps.Stat(realPath); err != nil {
		return fmt.Errorf("%w: %s is gone; re-run `devbox wrap %s` to repair the wrapper", ErrRealBinaryMissing, realPath, ide)
	}

	if AutoInstallDisabled(a.getenv) {
		slog.InfoContext(ctx, "Activator.Activate: auto-install disabled", "ide", ide)
	} else if err := a.spawnFn(ctx, ide); err != nil {
		// A broken reconciler must never block the user's launch.
		slog.ErrorContext(ctx, "Activator.Activate: failed to spawn reconciler", "ide", ide, "error", err)
	}

	argv := append([]string{realPath}, args...)
	slog.InfoContext(ctx, "Activator.Activate: exec", "ide", ide, "real", realPath, "args", args)
	return a.execFn(realPath, argv, os.Environ())
}

// spawnDetachedReconciler starts `devbox reconcile --ide <id>` in its own
// session. The wrapper process is about to be replaced by the real binary, so
// the child must not share its process group or controlling terminal.
func spawnDetachedReconciler(ctx context.Context, ide string) error {
	self, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(self, "reconcile", "--ide", ide)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return err
	}
	slog.InfoContext(ctx, "spawned detached reconciler", "ide", ide, "pid", cmd.Process.Pid)
	return cmd.Process.Release()
}
