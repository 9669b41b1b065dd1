package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Set via -ldflags at build time.
	GitCommit string
	GitBranch string
	BuildTime string
)

// Info carries everything `devbox version` reports.
type Info struct {
	GitCommit string           `json:"gitCommit,omitempty"`
	GitBranch string           `json:"gitBranch,omitempty"`
	BuildTime string           `json:"buildTime,omitempty"`
	BuildInfo *debug.BuildInfo `json:"buildInfo,omitempty"`
}

// Get returns the version information for this binary.
func Get() Info {
	ret := Info{
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		ret.BuildInfo = buildInfo
	}
	return ret
}

// Short returns a one-line human summary. Falls back to the module version
// from build info when the ldflags vars were not set.
func (v Info) Short() string {
	if v.GitCommit != "" {
		commit := v.GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		return fmt.Sprintf("%s (%s, built %s)", commit, v.GitBranch, v.BuildTime)
	}
	if v.BuildInfo != nil && v.BuildInfo.Main.Version != "" {
		return v.BuildInfo.Main.Version
	}
	return "unknown"
}
