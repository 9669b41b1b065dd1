package main

import (
	"fmt"
	"os"
	"text/tabwriter"
)

type DoctorCmd struct{}

func (c *DoctorCmd) Run(cctx *Context) error {
	ctx := cctx.Context
	failures := verifyPrerequisites(ctx, cctx.StateDir)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, check := range diagnosticChecks(cctx.StateDir) {
		status, detail := "PASS", ""
		if msg, ok := failures[check.Name]; ok {
			status, detail = "FAIL", msg
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", status, check.Name, detail)
	}
	w.Flush()

	if len(failures) > 0 {
		return fmt.Errorf("%d prerequisite check(s) failed", len(failures))
	}
	return nil
}
