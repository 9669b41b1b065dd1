package wrapper

import (
	"context"
	"errors"
	"testing"
)

type execCall struct {
	bin  string
	argv []string
}

func newTestActivator(env map[string]string) (*Activator, *execCall, *[]string) {
	var call execCall
	var spawned []string
	a := &Activator{
		fileOps: NewDefaultFileOps(),
		getenv:  func(k string) string { return env[k] },
		execFn: func(bin string, argv []string, envv []string) error {
			call = execCall{bin: bin, argv: argv}
			return nil
		},
		spawnFn: func(ctx context.Context, ide string) error {
			spawned = append(spawned, ide)
			return nil
		},
	}
	return a, &call, &spawned
}

func TestActivateExecsRealBinaryWithArgs(t *testing.T) {
	real := writeFakeBinary(t, t.TempDir(), "cursor")
	a, call, spawned := newTestActivator(nil)

	err := a.Activate(context.Background(), "cursor", real, []string{"--new-window", "."})
	if err != nil {
		t.Fatal(err)
	}
	if call.bin != real {
		t.Errorf("exec bin = %q, expected %q", call.bin, real)
	}
	expected := []string{real, "--new-window", "."}
	if len(call.argv) != len(expected) {
		t.Fatalf("argv = %v, expected %v", call.argv, expected)
	}
	for i := range expected {
		if call.argv[i] != expected[i] {
			t.Errorf("argv[%d] = %q, expected %q", i, call.argv[i], expected[i])
		}
	}
	if len(*spawned) != 1 || (*spawned)[0] != "cursor" {
		t.Errorf("spawned = %v, expected one reconciler for cursor", *spawned)
	}
}

func TestActivateMissingRealBinaryFailsLoudly(t *testing.T) {
	a, call, spawned := newTestActivator(nil)

	err := a.Activate(context.Background(), "cursor", "/nonexistent/cursor", nil)
	if !errors.Is(err, ErrRealBinaryMissing) {
		t.Fatalf("expected ErrRealBinaryMissing, got %v", err)
	}
	if call.bin != "" {
		t.Error("exec must not run when the real binary is missing")
	}
	if len(*spawned) != 0 {
		t.Error("reconciler must not spawn when the real binary is missing")
	}

	if err := a.Activate(context.Background(), "cursor", "", nil); !errors.Is(err, ErrRealBinaryMissing) {
		t.Errorf("empty real path: expected ErrRealBinaryMissing, got %v", err)
	}
}

func TestActivateDisabledSkipsReconcilerButStillLaunches(t *testing.T) {
	real := writeFakeBinary(t, t.TempDir(), "vscode")
	a, call, spawned := newTestActivator(map[string]string{DisableEnvVar: "true"})

	if err := a.Activate(context.Background(), "vscode", real, nil); err != nil {
		t.Fatal(err)
	}
	if len(*spawned) != 0 {
		t.Errorf("disabled activation spawned reconciler for %v", *spawned)
	}
	if call.bin != real {
		t.Error("launch must proceed even when auto-install is disabled")
	}
}

func TestActivateSpawnFailureDoesNotBlockLaunch(t *testing.T) {
	real := writeFakeBinary(t, t.TempDir(), "vscode")
	a, call, _ := newTestActivator(nil)
	a.spawnFn = func(ctx context.Context, ide string) error {
		return errors.New("fork bomb prevention")
	}

	if err := a.Activate(context.Background(), "vscode", real, []string{"README.md"}); err != nil {
		t.Fatal(err)
	}
	if call.bin != real {
		t.Error("launch must proceed despite spawn failure")
	}
}

func TestActivatePassesEnvironmentThrough(t *testing.T) {
	t.Setenv("DEVBOX_ACTIVATE_PROBE", "present")
	real := writeFakeBinary(t, t.TempDir(), "cursor")

	var gotEnv []string
	a, _, _ := newTestActivator(nil)
	a.execFn = func(bin string, argv []string, envv []string) error {
		gotEnv = envv
		return nil
	}
	if err := a.Activate(context.Background(), "cursor", real, nil); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, kv := range gotEnv {
		if kv == "DEVBOX_ACTIVATE_PROBE=present" {
			found = true
		}
	}
	if !found {
		t.Error("real binary does not inherit the caller's environment")
	}
}
