package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info contains version information
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Package string `json:"package"`
}

// GetVersion returns the injected version, then the module version from the
// build info, then "development".
func GetVersion() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "development"
}

// GetCommit returns the injected commit or the VCS revision from the build info.
func GetCommit() string {
	return injectedOr(Commit, "vcs.revision")
}

// GetBuildDate returns the injected date or the VCS commit time.
func GetBuildDate() string {
	return injectedOr(Date, "vcs.time")
}

func injectedOr(injected, setting string) string {
	if injected != "unknown" && injected != "" {
		return injected
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == setting {
				return s.Value
			}
		}
	}
	return "unknown"
}

// GetInfo returns complete version information
func GetInfo() Info {
	return Info{
		Version: GetVersion(),
		Commit:  GetCommit(),
		Date:    GetBuildDate(),
		Package: "vzip",
	}
}

// GetFullVersion returns the version with a short commit and the build date
// when they are known, e.g. "v1.2.0 (0123456, built 2024-05-01)".
func GetFullVersion() string {
	info := GetInfo()
	if info.Commit == "unknown" || len(info.Commit) <= 7 {
		return info.Version
	}
	short := info.Commit[:7]
	if info.Date == "unknown" {
		return fmt.Sprintf("%s (%s)", info.Version, short)
	}
	return fmt.Sprintf("%s (%s, built %s)", info.Version, short, info.Date)
}
