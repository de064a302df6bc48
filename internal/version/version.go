// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Report which build of the CLI produced a set of images.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set with -ldflags at release time.
var Version = ""

// GetVersion returns the release version when stamped, otherwise the VCS
// revision from build info, or "dev".
func GetVersion() string {
	if Version != "" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	return fromSettings(info.Settings)
}

func fromSettings(settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
