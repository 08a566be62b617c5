// Package version reports build metadata for the tmf binaries.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/samcharles93/tmf/internal/version.Version=...".
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
}

// Resolve merges the linker values with the module build info. Linker values
// win when both are present.
func Resolve() Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fromBuildInfo(info, bi)
	}
	if info.Version == "" {
		info.Version = "devel"
	}
	return info
}

func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	info.GoVersion = bi.GoVersion
	if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

func String() string {
	return Resolve().String()
}

func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, shortCommit(i.Commit))
}

func shortCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}
