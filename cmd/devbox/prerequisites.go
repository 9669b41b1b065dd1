package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

type diagnosticCheck struct {
	Name string
	Run  func(context.Context) error
}

func diagnosticChecks(stateDir string) []diagnosticCheck {
	return []diagnosticCheck{
		{
			Name: "Running on Linux",
			Run: func(ctx context.Context) error {
				if runtime.GOOS != "linux" {
					return fmt.Errorf("this program requires Linux, but detected OS: %s", runtime.GOOS)
				}
				return nil
			},
		},
		{
			Name: "podman is installed",
			Run: func(ctx context.Context) error {
				out, err := exec.CommandContext(ctx, "podman", "--version").Output()
				if err != nil {
					return fmt.Errorf("could not run podman; install it from https://podman.io/docs/installation: %w", err)
				}
				slog.InfoContext(ctx, "verifyPrerequisites", "podman", strings.TrimSpace(string(out)))
				return nil
			},
		},
		{
			Name: "distrobox is installed",
			Run: func(ctx context.Context) error {
				out, err := exec.CommandContext(ctx, "distrobox", "version").Output()
				if err != nil {
					return fmt.Errorf("could not run distrobox; install it from https://distrobox.it: %w", err)
				}
				slog.InfoContext(ctx, "verifyPrerequisites", "distrobox", strings.TrimSpace(string(out)))
				return nil
			},
		},
		{
			Name: "State directory is writable",
			Run: func(ctx context.Context) error {
				if err := os.MkdirAll(stateDir, 0750); err != nil {
					return fmt.Errorf("cannot create state dir %s: %w", stateDir, err)
				}
				probe := filepath.Join(stateDir, ".doctor-probe")
				if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
					return fmt.Errorf("cannot write to state dir %s: %w", stateDir, err)
				}
				return os.Remove(probe)
			},
		},
	}
}

func verifyPrerequisites(ctx context.Context, stateDir string) map[string]string {
	failures := map[string]string{}
	for _, check := range diagnosticChecks(stateDir) {
		if err := check.Run(ctx); err != nil {
			failures[check.Name] = err.Error()
			slog.ErrorContext(ctx, "diagnosticCheck failed", "name", check.Name, "error", err)
		} else {
			slog.InfoContext(ctx, "diagnosticCheck passed", "name", check.Name)
		}
	}
	return failures
}
