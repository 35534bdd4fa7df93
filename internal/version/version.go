// Package version reports the espdash build version. Release builds stamp
// it with ldflags:
//
//	go build -ldflags="-X github.com/muurk/espdash/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/espdash/internal/version.Commit=1f2e3d4" ./cmd/espdash
//
// A binary installed with "go install github.com/muurk/espdash/cmd/espdash@v0.3.0"
// takes the module version instead. Local builds fall back to the VCS
// stamp, then to "dev".
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	// Version is the espdash release, e.g. "v0.3.0"
	Version = ""
	// Commit is the short git revision
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			fromBuildInfo(info)
		}
	}

	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills whatever ldflags left empty
func fromBuildInfo(info *debug.BuildInfo) {
	settings := map[string]string{}
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if Commit == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			Commit = rev
		}
	}

	if Version != "" {
		return
	}
	// "(devel)" is what the toolchain reports for a plain "go build"
	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
		return
	}
	if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
		Version = "dev-" + t.Format("20060102")
	}
}

// Full returns the version and commit, as printed by "espdash version"
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent identifies espdash in requests to the device
func UserAgent() string {
	return "espdash/" + Version
}
