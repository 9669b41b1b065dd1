package main

import (
	"fmt"

	"github.com/johndanger/developer-toolbox/version"
)

type VersionCmd struct{}

func (c *VersionCmd) Run(cctx *Context) error {
	info := version.Get()
	fmt.Printf("devbox %s\n", info.Short())
	if info.BuildInfo == nil {
		return nil
	}
	for _, setting := range info.BuildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				fmt.Printf("Git Commit: %s\n", setting.Value)
			}
		case "vcs.time":
			if info.BuildTime == "" {
				fmt.Printf("Commit Time: %s\n", setting.Value)
			}
		case "vcs.modified":
			fmt.Printf("Modified: %s\n", setting.Value)
		}
	}
	return nil
}
