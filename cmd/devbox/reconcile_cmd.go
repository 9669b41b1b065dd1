package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/johndanger/developer-toolbox/wrapper"
)

// ReconcileCmd runs one extension reconciliation cycle. The activation
// runtime spawns it detached on every wrapped-IDE launch.
type ReconcileCmd struct {
	IDE    string        `optional:"" help:"IDE whose launch triggered this cycle (informational; the cycle covers every wrapped IDE)"`
	Settle time.Duration `default:"20s" help:"how long to wait before querying extension CLIs, so the launching IDE can finish starting"`
}

func (c *ReconcileCmd) Run(cctx *Context) error {
	ctx := cctx.Context
	slog.InfoContext(ctx, "ReconcileCmd.Run", "trigger", c.IDE, "settle", c.Settle)

	logDir := filepath.Join(cctx.StateDir, "logs")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}

	r := wrapper.NewReconciler(wrapper.ReconcilerConfig{
		Registry: wrapper.NewRegistry(cctx.StateDir, nil),
		LogDir:   logDir,
		Settle:   c.Settle,
	})
	return r.Run(ctx)
}
