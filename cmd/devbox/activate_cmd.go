package main

import (
	"log/slog"

	"github.com/johndanger/developer-toolbox/wrapper"
)

// ActivateCmd is the wrapper runtime. Generated launchers invoke it with the
// IDE identity and real binary path baked in; users never run it by hand.
type ActivateCmd struct {
	IDE  string   `required:"" help:"canonical id of the wrapped IDE"`
	Real string   `required:"" placeholder:"<real-binary-path>" help:"path to the real IDE binary"`
	Args []string `arg:"" optional:"" passthrough:"" help:"arguments forwarded to the real binary"`
}

func (c *ActivateCmd) Run(cctx *Context) error {
	ctx := cctx.Context
	slog.InfoContext(ctx, "ActivateCmd.Run", "ide", c.IDE, "real", c.Real, "args", c.Args)
	return wrapper.NewActivator().Activate(ctx, c.IDE, c.Real, c.Args)
}
