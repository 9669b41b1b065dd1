package toolbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/creack/pty"
	"github.com/johndanger/developer-toolbox/options"
	"golang.org/x/term"
)

// ContainerOps is the contract the orchestrator needs from the container
// multiplexer.
type ContainerOps interface {
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, containerName string) (bool, error)
	Create(ctx context.Context, opts *options.CreateContainer) (string, error)
	Remove(ctx context.Context, opts *options.RemoveContainer) (string, error)
	Exec(ctx context.Context, containerName, command string, args ...string) (string, error)
	ExecStream(ctx context.Context, containerName, command string, env []string, stdin io.Reader, stdout, stderr io.Writer, args ...string) (func() error, error)
}

type distroboxOps struct{}

// NewDistroboxOps returns a ContainerOps backed by the `distrobox` CLI.
func NewDistroboxOps() ContainerOps {
	return &distroboxOps{}
}

// List returns the names of all distrobox containers.
func (d *distroboxOps) List(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "distrobox", "list", "--no-color")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	// Output is a pipe-separated table: ID | NAME | STATUS | IMAGE.
	var names []string
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		names = append(names, strings.TrimSpace(fields[1]))
	}
	return names, nil
}

// Exists reports whether a container with the given name exists.
func (d *distroboxOps) Exists(ctx context.Context, containerName string) (bool, error) {
	names, err := d.List(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == containerName {
			return true, nil
		}
	}
	return false, nil
}

// Create creates a new container with the given options. It returns the
// command output.
func (d *distroboxOps) Create(ctx context.Context, opts *options.CreateContainer) (string, error) {
	var args []string
	if opts != nil {
		args = options.ToArgs(*opts)
	}
	cmd := exec.CommandContext(ctx, "distrobox", append([]string{"create"}, args...)...)
	slog.InfoContext(ctx, "distroboxOps.Create", "cmd", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), err
	}
	return strings.TrimSpace(string(output)), nil
}

// Remove deletes a container. It returns the command output.
func (d *distroboxOps) Remove(ctx context.Context, opts *options.RemoveContainer) (string, error) {
	var args []string
	if opts != nil {
		args = options.ToArgs(*opts)
	}
	cmd := exec.CommandContext(ctx, "distrobox", append([]string{"rm"}, args...)...)
	slog.InfoContext(ctx, "distroboxOps.Remove", "cmd", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), err
	}
	return strings.TrimSpace(string(output)), nil
}

// Exec runs a single command inside the container and returns its combined output.
func (d *distroboxOps) Exec(ctx context.Context, containerName, command string, args ...string) (string, error) {
	enter := append([]string{"enter", "--name", containerName, "--no-tty", "--"}, append([]string{command}, args...)...)
	cmd := exec.CommandContext(ctx, "distrobox", enter...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	slog.InfoContext(ctx, "distroboxOps.Exec", "cmd", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), err
	}
	return strings.TrimSpace(string(output)), nil
}

// ExecStream runs a command inside the container with streaming stdio. When
// stdin is not a terminal it falls back to a pseudo-terminal, since distrobox
// enter misbehaves without one. The returned func waits for the command to
// exit and must be called exactly once.
func (d *distroboxOps) ExecStream(ctx context.Context, containerName, command string, env []string, stdin io.Reader, stdout, stderr io.Writer, args ...string) (func() error, error) {
	enter := append([]string{"enter", "--name", containerName, "--"}, append([]string{command}, args...)...)
	cmd := exec.CommandContext(ctx, "distrobox", enter...)
	slog.InfoContext(ctx, "distroboxOps.ExecStream", "cmd", strings.Join(cmd.Args, " "))
	cmd.Env = env

	wait := func() error {
		err := cmd.Wait()
		if err != nil {
			slog.ErrorContext(ctx, "distroboxOps.ExecStream wait", "error", err)
		}
		return err
	}

	stdinFile, ok := stdin.(*os.File)
	if ok && term.IsTerminal(int(stdinFile.Fd())) {
		slog.InfoContext(ctx, "distroboxOps.ExecStream: normal terminal passthrough")

		cmd.Stdin = stdin
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Start(); err != nil {
			return nil, err
		}
		return wait, nil
	}

	slog.InfoContext(ctx, "distroboxOps.ExecStream: using pseudo-terminal")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, err
	}

	go io.Copy(ptmx, stdin)
	// The pty multiplexes the child's stdout and stderr onto one stream, so
	// everything lands on stdout.
	go io.Copy(stdout, ptmx)

	return func() error {
		// The pty stays open until the child exits so the copy goroutines can
		// drain it first.
		defer ptmx.Close()
		return wait()
	}, nil
}
