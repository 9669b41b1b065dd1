package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goombaio/namegenerator"

	toolbox "github.com/johndanger/developer-toolbox"
	"github.com/johndanger/developer-toolbox/catalog"
	"github.com/johndanger/developer-toolbox/history"
)

type InstallCmd struct {
	Force           bool     `short:"f" help:"destroy and recreate an existing container without asking"`
	NoExport        bool     `short:"n" help:"skip the export phase"`
	Interactive     bool     `short:"i" help:"pick components from a numbered prompt"`
	MountContainers bool     `help:"mount the host container engine sockets into the container"`
	ContainerName   string   `default:"devbox" placeholder:"<container-name>" help:"name of the container to create"`
	ImageName       string   `default:"localhost/devbox:latest" placeholder:"<image-name>" help:"tag for the environment image"`
	BuildDir        string   `default:"." placeholder:"<build-context-dir>" help:"image build context directory"`
	Components      []string `arg:"" optional:"" help:"components to install ('all' or empty for everything; 'LSP:a,b' selects language servers)"`
}

func (c *InstallCmd) Run(cctx *Context) error {
	ctx := cctx.Context
	slog.InfoContext(ctx, "InstallCmd.Run", "components", c.Components)

	if failures := verifyPrerequisites(ctx, cctx.StateDir); len(failures) > 0 {
		for name, msg := range failures {
			fmt.Fprintf(os.Stderr, "Prerequisite check failed: %s: %s\n", name, msg)
		}
		return fmt.Errorf("%d prerequisite check(s) failed; run `devbox doctor` for details", len(failures))
	}

	messenger := toolbox.NewTerminalMessenger(os.Stderr, os.Stdin)

	// Language server arguments mix freely with component tokens on the
	// command line; split them out first.
	var componentTokens, languageServerArgs []string
	for _, arg := range c.Components {
		if catalog.HasLanguageServerPrefix(arg) {
			languageServerArgs = append(languageServerArgs, arg)
		} else {
			componentTokens = append(componentTokens, arg)
		}
	}

	raw := strings.Join(componentTokens, ",")
	if c.Interactive {
		var err error
		raw, err = promptSelection(os.Stderr, os.Stdin)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(raw) == "" {
		raw = "all"
	}
	selection, err := catalog.ParseSelection(raw)
	if err != nil {
		return err
	}

	var languageServers []string
	for _, arg := range languageServerArgs {
		ids, unknown := catalog.ParseLanguageServers(arg)
		languageServers = append(languageServers, ids...)
		for _, u := range unknown {
			messenger.Message(ctx, fmt.Sprintf("Warning: unknown language server %q, skipping.", u))
		}
	}

	seed := time.Now().UTC().UnixNano()
	run := &toolbox.Run{
		Name:            namegenerator.NewNameGenerator(seed).Generate(),
		Selection:       selection,
		LanguageServers: languageServers,
		Force:           c.Force,
		SkipExport:      c.NoExport,
		MountContainers: c.MountContainers,
		ContainerName:   c.ContainerName,
		ImageName:       c.ImageName,
	}

	cfg := toolbox.OrchestratorConfig{
		Messenger:   messenger,
		BuildDir:    c.BuildDir,
		BuildOutput: os.Stderr,
		HomeDir:     homeDir(),
	}
	store, err := history.Open(filepath.Join(cctx.StateDir, "history.db"))
	if err != nil {
		// History is best effort; the install proceeds without it.
		slog.ErrorContext(ctx, "InstallCmd.Run: history store unavailable", "error", err)
	} else {
		defer store.Close()
		cfg.Recorder = store
	}

	// A partial-success run returns nil here: export failures are recorded on
	// the run, reported to the user, and do not fail the command.
	return toolbox.NewOrchestrator(cfg).Install(ctx, run)
}
