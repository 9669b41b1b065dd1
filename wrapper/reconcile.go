package wrapper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultSettleDelay is how long the background task waits before touching
// the IDE's extension CLI, so the just-launched IDE can finish its own
// startup first.
const DefaultSettleDelay = 20 * time.Second

// Reconciler compares required vs installed extensions for every registered
// IDE and installs the difference. Idempotent: when nothing is missing it
// performs zero install attempts. Safe to run concurrently for two IDEs, as
// the only shared state is independent per-IDE log files.
type Reconciler struct {
	registry   *Registry
	extensions ExtensionOps
	logDir     string
	keepLogs   int
	settle     time.Duration
	required   []string
	getenv     func(string) string
	sleep      func(time.Duration)
	now        func() time.Time
}

// ReconcilerConfig wires a Reconciler. Zero-value fields get production
// defaults.
type ReconcilerConfig struct {
	Registry   *Registry
	Extensions ExtensionOps
	LogDir     string
	KeepLogs   int
	Settle     time.Duration
	Required   []string
	Getenv     func(string) string
	Sleep      func(time.Duration)
	Now        func() time.Time
}

func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	r := &Reconciler{
		registry:   cfg.Registry,
		extensions: cfg.Extensions,
		logDir:     cfg.LogDir,
		keepLogs:   cfg.KeepLogs,
		settle:     cfg.Settle,
		required:   cfg.Required,
		getenv:     cfg.Getenv,
		sleep:      cfg.Sleep,
		now:        cfg.Now,
	}
	if r.extensions == nil {
		r.extensions = NewCLIExtensionOps()
	}
	if r.logDir == "" {
		r.logDir = os.TempDir()
	}
	if r.keepLogs == 0 {
		r.keepLogs = DefaultKeepLogs
	}
	if r.required == nil {
		r.required = RequiredExtensions
	}
	if r.getenv == nil {
		r.getenv = os.Getenv
	}
	if r.sleep == nil {
		r.sleep = time.Sleep
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Run executes one reconciliation cycle across every registered IDE. The
// disabled check happens once, up front, before any IDE is queried, so a
// disabled cycle has zero side effects.
func (r *Reconciler) Run(ctx context.Context) error {
	if AutoInstallDisabled(r.getenv) {
		slog.InfoContext(ctx, "Reconciler.Run: disabled by configuration, exiting")
		return nil
	}

	if r.settle > 0 {
		r.sleep(r.settle)
	}

	regs, err := r.registry.All()
	if err != nil {
		return fmt.Errorf("failed to load registrations: %w", err)
	}
	if len(regs) == 0 {
		slog.InfoContext(ctx, "Reconciler.Run: nothing registered")
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, reg := range regs {
		reg := reg
		g.Go(func() error {
			// Per-IDE failures are logged, not propagated: one broken IDE
			// must not cancel reconciliation of the others.
			r.reconcileOne(ctx, reg)
			return nil
		})
	}
	return g.Wait()
}

func (r *Reconciler) reconcileOne(ctx context.Context, reg Registration) {
	logPath := CycleLogPath(r.logDir, "extensions", reg.IDE, r.now())
	logFile, err := os.Create(logPath)
	if err != nil {
		slog.ErrorContext(ctx, "Reconciler.reconcileOne: cannot create cycle log", "ide", reg.IDE, "error", err)
		return
	}
	defer logFile.Close()

	logf := func(format string, args ...any) {
		fmt.Fprintf(logFile, "%s "+format+"\n", append([]any{r.now().Format(time.RFC3339)}, args...)...)
	}

	logf("reconciling %s (real binary %s)", reg.IDE, reg.RealBinaryPath)

	installed, err := r.extensions.Installed(ctx, reg.RealBinaryPath)
	if err != nil {
		logf("failed to list extensions: %v", err)
		slog.ErrorContext(ctx, "Reconciler.reconcileOne: list failed", "ide", reg.IDE, "error", err)
		return
	}

	missing := diffExtensions(r.required, installed)
	logf("%d missing", len(missing))

	for _, ext := range missing {
		if err := r.extensions.Install(ctx, reg.RealBinaryPath, ext); err != nil {
			// Logged and skipped; retried on the next launch.
			logf("install %s: FAILED: %v", ext, err)
			continue
		}
		logf("install %s: ok", ext)
	}

	if err := PruneCycleLogs(r.logDir, "extensions", reg.IDE, r.keepLogs); err != nil {
		slog.ErrorContext(ctx, "Reconciler.reconcileOne: prune failed", "ide", reg.IDE, "error", err)
	}
}

// diffExtensions returns the required ids not present in installed, in
// required order. Comparison is case-insensitive since the VS Code family
// reports lowercased ids.
func diffExtensions(required, installed []string) []string {
	have := make(map[string]bool, len(installed))
	for _, id := range installed {
		have[normalizeExtensionID(id)] = true
	}
	var missing []string
	for _, id := range required {
		if !have[normalizeExtensionID(id)] {
			missing = append(missing, id)
		}
	}
	return missing
}

func normalizeExtensionID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
