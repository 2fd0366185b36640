// Package version reports the ecotrack build version.
package version

import "runtime/debug"

// Build information, set with -ldflags "-X github.com/rshade/ecotrack/pkg/version.version=...".
//
//nolint:gochecknoglobals // Set by the linker.
var (
	version   = "dev"
	gitCommit = ""
	buildDate = ""
)

// GetVersion returns the version string, e.g. "0.3.1" or "dev".
// Without linker flags it falls back to the module version recorded by go install.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// GetGitCommit returns the commit the binary was built from, if known.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp, if known.
func GetBuildDate() string {
	return buildDate
}

// String returns the version with commit and build date when they are known.
func String() string {
	s := GetVersion()
	if gitCommit != "" {
		s += " (" + gitCommit
		if buildDate != "" {
			s += ", " + buildDate
		}
		s += ")"
	}
	return s
}
