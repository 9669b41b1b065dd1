package wrapper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFakeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho real\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegisterWrapsBinary(t *testing.T) {
	ctx := context.Background()
	stateDir := t.TempDir()
	binDir := t.TempDir()
	original := writeFakeBinary(t, binDir, "cursor")

	r := NewRegistrar(stateDir, "/usr/local/bin/devbox", nil)
	reg, err := r.Register(ctx, "cursor", original)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// The original path must now be a symlink to the generated wrapper.
	fi, err := os.Lstat(original)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Errorf("%s is not a symlink after wrapping", original)
	}
	target, err := os.Readlink(original)
	if err != nil {
		t.Fatal(err)
	}
	if target != reg.WrapperPath {
		t.Errorf("symlink target = %q, expected %q", target, reg.WrapperPath)
	}

	// The sidecar must hold the original content.
	data, err := os.ReadFile(reg.RealBinaryPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "#!/bin/sh\necho real\n" {
		t.Errorf("sidecar content = %q", data)
	}

	// The generated launcher embeds identity as data, not argv sniffing.
	launcher, err := os.ReadFile(reg.WrapperPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"--ide cursor", "--real " + reg.RealBinaryPath, "/usr/local/bin/devbox"} {
		if !strings.Contains(string(launcher), want) {
			t.Errorf("launcher missing %q:\n%s", want, launcher)
		}
	}

	// The registration must be persisted.
	got, ok, err := r.Registry().Get("cursor")
	if err != nil || !ok {
		t.Fatalf("registration not persisted: ok=%v err=%v", ok, err)
	}
	if got != reg {
		t.Errorf("persisted registration = %+v, expected %+v", got, reg)
	}
}

func TestRegisterTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	stateDir := t.TempDir()
	binDir := t.TempDir()
	original := writeFakeBinary(t, binDir, "vscode")

	r := NewRegistrar(stateDir, "/usr/local/bin/devbox", nil)
	first, err := r.Register(ctx, "vscode", original)
	if err != nil {
		t.Fatal(err)
	}
	firstTarget, _ := os.Readlink(original)
	firstSidecar, _ := os.ReadFile(first.RealBinaryPath)

	second, err := r.Register(ctx, "vscode", original)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("second Register: expected ErrAlreadyRegistered, got %v", err)
	}
	if second != first {
		t.Errorf("second registration = %+v, expected %+v", second, first)
	}

	// Filesystem state must be unchanged: same symlink target, same sidecar.
	secondTarget, _ := os.Readlink(original)
	if secondTarget != firstTarget {
		t.Errorf("symlink target changed: %q -> %q", firstTarget, secondTarget)
	}
	secondSidecar, _ := os.ReadFile(first.RealBinaryPath)
	if string(secondSidecar) != string(firstSidecar) {
		t.Error("sidecar content changed on re-registration")
	}
}

func TestRegisterRejectsUnwrappableComponents(t *testing.T) {
	r := NewRegistrar(t.TempDir(), "/usr/local/bin/devbox", nil)
	if _, err := r.Register(context.Background(), "zed", "/usr/bin/zed"); !errors.Is(err, ErrNotWrappable) {
		t.Errorf("expected ErrNotWrappable for zed, got %v", err)
	}
	if _, err := r.Register(context.Background(), "sublime", "/usr/bin/subl"); err == nil {
		t.Error("expected error for unknown component")
	}
}

func TestRegisterRollsBackOnSymlinkFailure(t *testing.T) {
	ctx := context.Background()
	stateDir := t.TempDir()
	binDir := t.TempDir()
	original := writeFakeBinary(t, binDir, "cursor")

	fileOps := &failingFileOps{
		FileOps:     NewDefaultFileOps(),
		failSymlink: true,
	}
	r := NewRegistrar(stateDir, "/usr/local/bin/devbox", fileOps)

	if _, err := r.Register(ctx, "cursor", original); err == nil {
		t.Fatal("expected Register to fail")
	}

	// The original binary must be back at its original path, runnable.
	data, err := os.ReadFile(original)
	if err != nil {
		t.Fatalf("original binary not restored: %v", err)
	}
	if string(data) != "#!/bin/sh\necho real\n" {
		t.Errorf("restored content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(stateDir, "real", "cursor")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("sidecar should be gone after rollback, stat err = %v", err)
	}
}

type failingFileOps struct {
	FileOps
	failSymlink bool
}

func (f *failingFileOps) Symlink(oldname, newname string) error {
	if f.failSymlink {
		return errors.New("symlink exploded")
	}
	return f.FileOps.Symlink(oldname, newname)
}

