// Package version reports what build of cadastre is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Commit and BuildTime may be set with -ldflags; otherwise they are read from
// the VCS stamp Go embeds in the binary.
var (
	Commit    = ""
	BuildTime = ""
)

// String returns the module version plus the commit and build time.
func String() string {
	info, _ := debug.ReadBuildInfo()
	return describe(info, Commit, BuildTime)
}

func describe(info *debug.BuildInfo, commit, built string) string {
	ver := "(devel)"
	dirty := false
	if info != nil {
		if v := info.Main.Version; v != "" {
			ver = v
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("cadastre %s (commit: %s, built: %s)", ver, commit, built)
}
