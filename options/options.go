// Package options defines flag structs for the external `podman` and
// `distrobox` CLI commands, plus a reflection helper to turn them into argv
// slices.
package options

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// BuildImage are the option flags for `podman build`.
type BuildImage struct {
	Tag      string            `flag:"--tag"`       // Name and optionally a tag in the 'name:tag' format
	File     string            `flag:"--file"`      // Path to the Containerfile
	BuildArg map[string]string `flag:"--build-arg"` // key=value build arguments
	Pull     bool              `flag:"--pull"`      // Always attempt to pull a newer version of the base image
	NoCache  bool              `flag:"--no-cache"`  // Do not use existing cached images
	Quiet    bool              `flag:"--quiet"`     // Suppress build output
	Squash   bool              `flag:"--squash"`    // Squash newly built layers into a single layer
	Target   string            `flag:"--target"`    // Set the target build stage
	Platform string            `flag:"--platform"`  // Set platform (os/arch) for the build
}

// ListContainers are the option flags for `distrobox list`.
type ListContainers struct {
	NoColor bool `flag:"--no-color"`
	Root    bool `flag:"--root"` // Launch podman/docker with root privileges
}

// CreateContainer are the option flags for `distrobox create`.
type CreateContainer struct {
	Name            string   `flag:"--name"`             // Name for the distrobox
	Image           string   `flag:"--image"`            // Image to use for the container
	Yes             bool     `flag:"--yes"`              // Non-interactive, pull images without asking
	Pull            bool     `flag:"--pull"`             // Pull the image even if it exists locally
	Home            string   `flag:"--home"`             // Select a custom home directory for the container
	Volume          []string `flag:"--volume"`           // Additional volumes to add to the container
	AdditionalFlags []string `flag:"--additional-flags"` // Additional flags to pass to the container manager
	InitHooks       string   `flag:"--init-hooks"`       // Commands to execute at the start of container startup
	NoEntry         bool     `flag:"--no-entry"`         // Do not generate a container entry in the application list
	UnshareNetns    bool     `flag:"--unshare-netns"`    // Do not share the host network namespace
}

// RemoveContainer are the option flags for `distrobox rm`.
type RemoveContainer struct {
	Name  string `flag:"--name"`
	Force bool   `flag:"--force"` // Force deletion, stopping the container first
	Yes   bool   `flag:"--yes"`   // Non-interactive
}

// EnterContainer are the option flags for `distrobox enter`.
type EnterContainer struct {
	Name      string `flag:"--name"`
	NoTTY     bool   `flag:"--no-tty"`     // Do not instantiate a tty
	CleanPath bool   `flag:"--clean-path"` // Reset PATH inside the container to defaults
	DryRun    bool   `flag:"--dry-run"`    // Only print the command that would be executed
	NoWorkDir bool   `flag:"--no-workdir"` // Start the shell in the container home instead of the cwd
}

// ExportApp are the option flags for `distrobox-export` (run inside the container).
type ExportApp struct {
	App        string `flag:"--app"`         // Name of the application to export
	Bin        string `flag:"--bin"`         // Absolute path of the binary to export
	ExportPath string `flag:"--export-path"` // Path where the binary is exported (--bin only)
	ExtraFlags string `flag:"--extra-flags"` // Additional flags for the exported program
	Delete     bool   `flag:"--delete"`      // Delete an exported application or binary
	Sudo       bool   `flag:"--sudo"`        // Run the exported item with sudo in the container
}

// ToArgs creates an array of strings that you can pass to exec.Command(...) as CLI args.
func ToArgs(s any) []string {
	var ret []string
	st := reflect.TypeOf(s)
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		flagTag, ok := field.Tag.Lookup("flag")
		if !ok {
			continue
		}
		flagParts := strings.Split(flagTag, ",")
		flagName := flagParts[0]
		keepZero := false
		if len(flagParts) > 1 {
			if strings.ToLower(flagParts[1]) == "keepzero" {
				keepZero = true
			}
		}
		sv := reflect.ValueOf(s)
		fv := sv.Field(i)
		v := reflect.ValueOf(fv.Interface())
		if !keepZero && v.IsZero() {
			continue
		}
		if ret == nil {
			ret = []string{}
		}
		switch field.Type.Kind() {
		case reflect.Map:
			// Repeatable key=value flags, emitted in sorted key order so the
			// resulting argv is deterministic.
			m := v.Interface().(map[string]string)
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				ret = append(ret, flagName, fmt.Sprintf("%v=%v", k, m[k]))
			}
		case reflect.Slice:
			for _, item := range v.Interface().([]string) {
				ret = append(ret, flagName, item)
			}
		case reflect.Bool:
			ret = append(ret, flagName)
		default:
			ret = append(ret, flagName, fmt.Sprintf("%v", fv.Interface()))
		}
	}
	return ret
}
