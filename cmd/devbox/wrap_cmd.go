package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/johndanger/developer-toolbox/catalog"
	"github.com/johndanger/developer-toolbox/wrapper"
)

type WrapCmd struct {
	IDE  string `arg:"" help:"component id or alias of the IDE to wrap"`
	Path string `short:"p" optional:"" placeholder:"<binary-path>" help:"path to the IDE binary (defaults to looking it up on PATH)"`
}

func (c *WrapCmd) Run(cctx *Context) error {
	ctx := cctx.Context
	slog.InfoContext(ctx, "WrapCmd.Run", "ide", c.IDE)

	id, err := catalog.Resolve(c.IDE)
	if err != nil {
		return err
	}
	component, _ := catalog.Get(id)

	path := c.Path
	if path == "" {
		path, err = exec.LookPath(component.Bin)
		if err != nil {
			return fmt.Errorf("cannot find %s on PATH (has it been installed and exported yet?): %w", component.Bin, err)
		}
	}

	devboxPath, err := os.Executable()
	if err != nil {
		return err
	}

	registrar := wrapper.NewRegistrar(cctx.StateDir, devboxPath, nil)
	reg, err := registrar.Register(ctx, id, path)
	if errors.Is(err, wrapper.ErrAlreadyRegistered) {
		fmt.Printf("%s is already wrapped (real binary at %s).\n", component.DisplayName, reg.RealBinaryPath)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Wrapped %s: launches now reconcile extensions in the background.\n", component.DisplayName)
	fmt.Printf("Real binary moved to %s. Set %s=1 to disable auto-install.\n", reg.RealBinaryPath, wrapper.DisableEnvVar)
	return nil
}
