package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	kongcompletion "github.com/jotaen/kong-completion"
	"gopkg.in/natefinch/lumberjack.v2"

	toolbox "github.com/johndanger/developer-toolbox"
)

type Context struct {
	Context  context.Context
	StateDir string
}

type CLI struct {
	LogFile  string `default:"${log_file}" placeholder:"<log-file-path>" help:"location of the json log file"`
	Verbose  bool   `short:"v" help:"log at info level instead of warn"`
	Debug    bool   `short:"d" help:"log at debug level (implies --verbose)"`
	StateDir string `default:"${state_dir}" placeholder:"<state-dir>" help:"directory for wrapper state, run history and activation logs"`

	Install    InstallCmd                `cmd:"" default:"withargs" help:"build the environment image, create the container and export the selected components"`
	Enter      EnterCmd                  `cmd:"" help:"enter the container, or run a single command inside it"`
	Wrap       WrapCmd                   `cmd:"" help:"wrap an installed IDE binary so launches trigger extension reconciliation"`
	Activate   ActivateCmd               `cmd:"" hidden:"" help:"wrapper runtime: exec the real IDE binary and schedule reconciliation"`
	Reconcile  ReconcileCmd              `cmd:"" hidden:"" help:"run one extension reconciliation cycle across every wrapped IDE"`
	History    HistoryCmd                `cmd:"" help:"list recent installation runs"`
	Doctor     DoctorCmd                 `cmd:"" help:"check host prerequisites"`
	Version    VersionCmd                `cmd:"" help:"print version information about this command"`
	Completion kongcompletion.Completion `cmd:"" help:"print shell code for enabling tab completion"`
}

func (c *CLI) initSlog() {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelInfo
	}
	if c.Debug {
		level = slog.LevelDebug
	}

	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0755); err != nil {
		panic(err)
	}
	logger := slog.New(slog.NewJSONHandler(&lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	slog.Info("slog initialized", "level", level.String())
}

const description = `Provision a containerized development environment.

Builds a podman image with the selected editors and language servers, creates a
distrobox container from it, and exports the selected components back to the
host. Requires podman (https://podman.io) and distrobox
(https://distrobox.it).`

func main() {
	var cli CLI

	parser := kong.Must(&cli,
		kong.Description(description),
		kong.Configuration(kongyaml.Loader, "/etc/devbox/config.yaml", "~/.config/devbox/config.yaml"),
		kong.Vars{
			"log_file":  defaultLogFile(),
			"state_dir": defaultStateDir(),
		},
	)
	kongcompletion.Register(parser)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cli.initSlog()

	ctx := context.Background()
	shutdown, err := toolbox.SetupTracing(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tracing setup failed: %v\n", err)
	} else {
		defer shutdown(ctx)
	}

	err = kctx.Run(&Context{
		Context:  ctx,
		StateDir: cli.StateDir,
	})
	kctx.FatalIfErrorf(err)
}
