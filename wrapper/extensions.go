package wrapper

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
)

// RequiredExtensions is the fixed extension set shared across the wrapped GUI
// IDE family. Consulted on every activation cycle, never mutated.
var RequiredExtensions = []string{
	"golang.go",
	"rust-lang.rust-analyzer",
	"ms-python.python",
	"dbaeumer.vscode-eslint",
	"esbenp.prettier-vscode",
	"eamodio.gitlens",
	"redhat.vscode-yaml",
}

// ExtensionOps is the per-IDE extension query/install contract.
type ExtensionOps interface {
	// Installed returns the extension ids currently installed for the IDE
	// binary at bin.
	Installed(ctx context.Context, bin string) ([]string, error)
	// Install installs one extension by id, forcing reinstall if the IDE
	// considers it present but broken.
	Install(ctx context.Context, bin, extensionID string) error
}

type cliExtensionOps struct{}

// NewCLIExtensionOps returns an ExtensionOps that drives the IDE's own
// extension CLI (the VS Code-family --list-extensions/--install-extension
// surface).
func NewCLIExtensionOps() ExtensionOps {
	return &cliExtensionOps{}
}

func (c *cliExtensionOps) Installed(ctx context.Context, bin string) ([]string, error) {
	cmd := exec.CommandContext(ctx, bin, "--list-extensions")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids = append(ids, strings.ToLower(line))
		}
	}
	return ids, nil
}

func (c *cliExtensionOps) Install(ctx context.Context, bin, extensionID string) error {
	cmd := exec.CommandContext(ctx, bin, "--install-extension", extensionID, "--force")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	output, err := cmd.CombinedOutput()
	if err != nil {
		slog.ErrorContext(ctx, "cliExtensionOps.Install", "bin", bin, "extension", extensionID, "error", err, "output", string(output))
		return err
	}
	return nil
}
