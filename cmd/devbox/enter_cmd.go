package main

import (
	"log/slog"
	"os"

	toolbox "github.com/johndanger/developer-toolbox"
)

type EnterCmd struct {
	ContainerName string   `default:"devbox" placeholder:"<container-name>" help:"name of the container to enter"`
	Command       []string `arg:"" optional:"" passthrough:"" help:"command to run inside the container (defaults to your shell)"`

	containers toolbox.ContainerOps
}

func (c *EnterCmd) Run(cctx *Context) error {
	ctx := cctx.Context
	slog.InfoContext(ctx, "EnterCmd.Run", "container", c.ContainerName, "command", c.Command)

	ops := c.containers
	if ops == nil {
		ops = toolbox.NewDistroboxOps()
	}

	command := c.Command
	if len(command) == 0 {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/bash"
		}
		command = []string{shell}
	}

	wait, err := ops.ExecStream(ctx, c.ContainerName, command[0], os.Environ(), os.Stdin, os.Stdout, os.Stderr, command[1:]...)
	if err != nil {
		return err
	}
	return wait()
}
