package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	toolbox "github.com/johndanger/developer-toolbox"
	"github.com/johndanger/developer-toolbox/history"
)

type HistoryCmd struct {
	Limit int `short:"l" default:"20" help:"maximum number of runs to show"`
}

func (c *HistoryCmd) Run(cctx *Context) error {
	ctx := cctx.Context

	store, err := history.Open(filepath.Join(cctx.StateDir, "history.db"))
	if err != nil {
		slog.ErrorContext(ctx, "HistoryCmd.Run", "error", err)
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tRESULT\tSELECTION\tSTARTED\tDURATION\tFAILED COMPONENTS\t")
	for _, rec := range runs {
		var failed []string
		for _, cr := range rec.Components {
			if cr.Status == string(toolbox.StatusFailed) {
				failed = append(failed, cr.Component)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			rec.Name,
			rec.Result,
			strings.Join(rec.Selection, ","),
			rec.StartedAt.Format(time.RFC3339),
			rec.FinishedAt.Sub(rec.StartedAt).Round(time.Second),
			strings.Join(failed, ","),
		)
	}
	return w.Flush()
}
