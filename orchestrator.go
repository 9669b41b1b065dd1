package toolbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/johndanger/developer-toolbox/catalog"
	"github.com/johndanger/developer-toolbox/options"
)

const (
	// DefaultContainerName is the fixed container name for the developer
	// environment. One environment per host; concurrent runs against the same
	// name are a user error, not something we guard against.
	DefaultContainerName = "devbox"
	// DefaultImageName is the locally built environment image.
	DefaultImageName = "localhost/devbox:latest"
	// DefaultSettleDelay is how long to wait after container creation before
	// exporting, to give the container init time to finish.
	DefaultSettleDelay = 5 * time.Second

	// exportBinPath is where exported terminal editors land on the host.
	exportBinPath = ".local/bin"
)

// RunRecorder persists finished runs. Satisfied by *history.Store.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *Run) error
}

// OrchestratorConfig wires an Orchestrator's collaborators. Zero-value fields
// get podman/distrobox-backed defaults.
type OrchestratorConfig struct {
	Images      ImageOps
	Containers  ContainerOps
	Messenger   UserMessenger
	Reporter    Reporter
	Recorder    RunRecorder
	BuildDir    string
	BuildOutput io.Writer
	SettleDelay time.Duration
	// Sleep is replaceable so tests don't wait out the settle delay.
	Sleep func(time.Duration)
	// HomeDir is the host home directory, used for the bin export path.
	HomeDir string
}

// Orchestrator sequences the Build, Create and Export phases of an
// installation run. It is single-threaded by design: each phase is a
// long-running external command and the container must exist before export.
type Orchestrator struct {
	images      ImageOps
	containers  ContainerOps
	messenger   UserMessenger
	reporter    Reporter
	recorder    RunRecorder
	buildDir    string
	buildOutput io.Writer
	settle      time.Duration
	sleep       func(time.Duration)
	homeDir     string
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	o := &Orchestrator{
		images:      cfg.Images,
		containers:  cfg.Containers,
		messenger:   cfg.Messenger,
		reporter:    cfg.Reporter,
		recorder:    cfg.Recorder,
		buildDir:    cfg.BuildDir,
		buildOutput: cfg.BuildOutput,
		settle:      cfg.SettleDelay,
		sleep:       cfg.Sleep,
		homeDir:     cfg.HomeDir,
	}
	if o.images == nil {
		o.images = NewPodmanImageOps()
	}
	if o.containers == nil {
		o.containers = NewDistroboxOps()
	}
	if o.messenger == nil {
		o.messenger = NewNullMessenger()
	}
	if o.reporter == nil {
		o.reporter = nullReporter{}
	}
	if o.buildDir == "" {
		o.buildDir = "."
	}
	if o.buildOutput == nil {
		o.buildOutput = io.Discard
	}
	if o.settle == 0 {
		o.settle = DefaultSettleDelay
	}
	if o.sleep == nil {
		o.sleep = time.Sleep
	}
	return o
}

// Install drives one run through Build, Create and Export. Build and create
// failures are fatal and returned as errors wrapping ErrBuildFailed /
// ErrContainerCreateFailed. Export failures are recorded on the run and never
// returned as an error: the run finishes with ResultPartialSuccess instead.
func (o *Orchestrator) Install(ctx context.Context, run *Run) error {
	slog.InfoContext(ctx, "Orchestrator.Install", "run", run.Name, "selection", run.Selection.String())

	if len(run.Selection.IDs) == 0 {
		return catalog.ErrEmptySelection
	}
	if run.ContainerName == "" {
		run.ContainerName = DefaultContainerName
	}
	if run.ImageName == "" {
		run.ImageName = DefaultImageName
	}
	if err := ValidateImageName(run.ImageName); err != nil {
		return err
	}
	if len(run.LanguageServers) > 0 && !run.Selection.HasLSPCapable() {
		o.messenger.Message(ctx, "Note: language servers were selected but no terminal editor is; they will be installed but unused.")
	}

	run.StartedAt = time.Now()
	// The failure tip is registered up front so every fatal exit path prints
	// a concrete next step.
	defer func() {
		run.FinishedAt = time.Now()
		if run.Result == ResultFailed {
			o.messenger.Message(ctx, "Something went wrong. Re-run with --debug and check the log file for details.")
		}
		if o.recorder != nil {
			if err := o.recorder.RecordRun(ctx, run); err != nil {
				slog.ErrorContext(ctx, "Orchestrator.Install recording run", "error", err)
			}
		}
	}()

	if err := o.build(ctx, run); err != nil {
		run.Result = ResultFailed
		o.messenger.Message(ctx, fmt.Sprintf("Manual equivalent: podman build --tag %s %s", run.ImageName, o.buildDir))
		return err
	}

	created, err := o.create(ctx, run)
	if err != nil {
		run.Result = ResultFailed
		o.messenger.Message(ctx, fmt.Sprintf("Manual equivalent: distrobox create --name %s --image %s --yes", run.ContainerName, run.ImageName))
		return err
	}

	if run.SkipExport {
		slog.InfoContext(ctx, "Orchestrator.Install: export skipped", "run", run.Name)
		run.Result = ResultSuccess
		o.reporter.Event(ctx, Event{Phase: PhaseDone, Status: StatusSuccess})
		return nil
	}

	if created {
		o.messenger.Message(ctx, fmt.Sprintf("Waiting %v for the container to settle...", o.settle))
		o.sleep(o.settle)
	}

	o.export(ctx, run)

	failed := run.FailedComponents()
	if len(failed) == 0 {
		run.Result = ResultSuccess
		o.messenger.Message(ctx, "All components exported.")
	} else {
		run.Result = ResultPartialSuccess
		o.messenger.Message(ctx, fmt.Sprintf("Export failed for: %s. The rest succeeded; re-run to retry, or export manually with: distrobox enter %s -- distrobox-export --app <name>",
			strings.Join(failed, ", "), run.ContainerName))
	}
	o.reporter.Event(ctx, Event{Phase: PhaseDone, Status: StatusSuccess})
	return nil
}

func (o *Orchestrator) build(ctx context.Context, run *Run) error {
	ctx, span := tracer().Start(ctx, "build")
	defer span.End()

	o.messenger.Message(ctx, fmt.Sprintf("Building image %s. This may take a while...", run.ImageName))
	start := time.Now()

	buildArgs := map[string]string{
		"IDES": strings.Join(run.Selection.IDs, ","),
	}
	if len(run.LanguageServers) > 0 {
		buildArgs["LSPS"] = strings.Join(run.LanguageServers, ",")
	}
	err := o.images.Build(ctx, &options.BuildImage{
		Tag:      run.ImageName,
		BuildArg: buildArgs,
	}, o.buildDir, o.buildOutput, o.buildOutput)
	if err != nil {
		span.RecordError(err)
		o.reporter.Event(ctx, Event{Phase: PhaseBuild, Status: StatusFailed, Err: err})
		return fmt.Errorf("%w: %s", ErrBuildFailed, err)
	}

	o.messenger.Message(ctx, fmt.Sprintf("Done building image. Took %v.", time.Since(start).Round(time.Second)))
	o.reporter.Event(ctx, Event{Phase: PhaseBuild, Status: StatusSuccess})
	return nil
}

// create returns true when a fresh container was created, false when an
// existing one is being reused. Reuse is a success, not a failure: the
// operator explicitly declined recreation. Callers relying on "success means
// freshly built" must check the create event for StatusSkipped.
func (o *Orchestrator) create(ctx context.Context, run *Run) (bool, error) {
	ctx, span := tracer().Start(ctx, "create")
	defer span.End()

	// Pre-flight: a missing image means a much clearer error here than the
	// one distrobox create would produce.
	imageExists, err := o.images.Exists(ctx, run.ImageName)
	if err != nil {
		span.RecordError(err)
		o.reporter.Event(ctx, Event{Phase: PhaseCreate, Status: StatusFailed, Err: err})
		return false, fmt.Errorf("%w: %s", ErrContainerCreateFailed, err)
	}
	if !imageExists {
		err := fmt.Errorf("image %q not found in local storage", run.ImageName)
		span.RecordError(err)
		o.reporter.Event(ctx, Event{Phase: PhaseCreate, Status: StatusFailed, Err: err})
		return false, fmt.Errorf("%w: %s", ErrContainerCreateFailed, err)
	}

	exists, err := o.containers.Exists(ctx, run.ContainerName)
	if err != nil {
		span.RecordError(err)
		o.reporter.Event(ctx, Event{Phase: PhaseCreate, Status: StatusFailed, Err: err})
		return false, fmt.Errorf("%w: %s", ErrContainerCreateFailed, err)
	}

	if exists {
		recreate := run.Force
		if !recreate {
			recreate, err = o.messenger.Confirm(ctx, fmt.Sprintf("Container %q already exists. Destroy and recreate it", run.ContainerName))
			if err != nil {
				return false, fmt.Errorf("%w: %s", ErrContainerCreateFailed, err)
			}
		}
		if !recreate {
			o.messenger.Message(ctx, fmt.Sprintf("Reusing existing container %q.", run.ContainerName))
			o.reporter.Event(ctx, Event{Phase: PhaseCreate, Status: StatusSkipped})
			return false, nil
		}
		if out, err := o.containers.Remove(ctx, &options.RemoveContainer{Name: run.ContainerName, Force: true, Yes: true}); err != nil {
			slog.ErrorContext(ctx, "Orchestrator.create remove", "error", err, "out", out)
			span.RecordError(err)
			o.reporter.Event(ctx, Event{Phase: PhaseCreate, Status: StatusFailed, Err: err})
			return false, fmt.Errorf("%w: removing existing container: %s", ErrContainerCreateFailed, err)
		}
	}

	opts := &options.CreateContainer{
		Name:  run.ContainerName,
		Image: run.ImageName,
		Yes:   true,
	}
	if run.MountContainers {
		opts.Volume = hostContainerSocketMounts()
	}
	o.messenger.Message(ctx, fmt.Sprintf("Creating container %q...", run.ContainerName))
	out, err := o.containers.Create(ctx, opts)
	if err != nil {
		slog.ErrorContext(ctx, "Orchestrator.create", "error", err, "out", out)
		span.RecordError(err)
		o.reporter.Event(ctx, Event{Phase: PhaseCreate, Status: StatusFailed, Err: err})
		return false, fmt.Errorf("%w: %s", ErrContainerCreateFailed, err)
	}

	o.reporter.Event(ctx, Event{Phase: PhaseCreate, Status: StatusSuccess})
	return true, nil
}

// export attempts to export every component in the run, in selection order
// (catalog order for "all"). Per-component failure is recorded and reported
// but never aborts the loop: some components may legitimately be unexportable
// without invalidating the rest.
func (o *Orchestrator) export(ctx context.Context, run *Run) {
	ctx, span := tracer().Start(ctx, "export")
	defer span.End()

	for _, c := range run.Selection.Components() {
		binPath, err := o.resolveBin(ctx, run.ContainerName, c)
		if err != nil {
			if run.Selection.All {
				// "all" exports only what's actually present in the container.
				run.RecordOutcome(c.ID, StatusSkipped, "not installed")
				o.reporter.Event(ctx, Event{Phase: PhaseExport, Component: c.ID, Status: StatusSkipped})
				continue
			}
			run.RecordOutcome(c.ID, StatusFailed, fmt.Sprintf("binary %s not found in container", c.Bin))
			o.reporter.Event(ctx, Event{Phase: PhaseExport, Component: c.ID, Status: StatusFailed, Err: err})
			continue
		}

		if err := o.exportOne(ctx, run, c, binPath); err != nil {
			slog.ErrorContext(ctx, "Orchestrator.export", "component", c.ID, "error", err)
			run.RecordOutcome(c.ID, StatusFailed, err.Error())
			o.reporter.Event(ctx, Event{Phase: PhaseExport, Component: c.ID, Status: StatusFailed, Err: &ExportError{Component: c.ID, Err: err}})
			continue
		}
		run.RecordOutcome(c.ID, StatusSuccess, "")
		o.reporter.Event(ctx, Event{Phase: PhaseExport, Component: c.ID, Status: StatusSuccess})
		o.messenger.Message(ctx, fmt.Sprintf("Exported %s.", c.DisplayName))
	}
}

// resolveBin finds the component's executable path inside the container.
func (o *Orchestrator) resolveBin(ctx context.Context, containerName string, c catalog.Component) (string, error) {
	out, err := o.containers.Exec(ctx, containerName, "sh", "-c", "command -v "+c.Bin)
	if err != nil {
		return "", fmt.Errorf("%s not present: %w", c.Bin, err)
	}
	path := strings.TrimSpace(out)
	if path == "" {
		return "", fmt.Errorf("%s not present", c.Bin)
	}
	return path, nil
}

func (o *Orchestrator) exportOne(ctx context.Context, run *Run, c catalog.Component, binPath string) error {
	var opts options.ExportApp
	if c.GUI() {
		opts = options.ExportApp{App: c.App}
	} else {
		opts = options.ExportApp{Bin: binPath, ExportPath: filepath.Join(o.homeDir, exportBinPath)}
	}
	out, err := o.containers.Exec(ctx, run.ContainerName, "distrobox-export", options.ToArgs(opts)...)
	if err != nil {
		return fmt.Errorf("distrobox-export: %w (output: %s)", err, out)
	}
	return nil
}

// hostContainerSocketMounts are the extra mounts for --mount-containers, so
// tools inside the box can talk to the host's container engine.
func hostContainerSocketMounts() []string {
	return []string{
		"/run/user/1000/podman/podman.sock:/run/user/1000/podman/podman.sock",
		"/var/run/docker.sock:/var/run/docker.sock",
	}
}
