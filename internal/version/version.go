// Package version holds build-time version information for Skepesis
// binaries. The variables are injected via -ldflags:
//
// -X github.com/skepesis/skepesis/internal/version.Version=v0.1.0
// -X github.com/skepesis/skepesis/internal/version.Commit=abc1234
// -X github.com/skepesis/skepesis/internal/version.Date=2026-08-01T00:00:00Z
//
// so local builds without ldflags still produce sensible output.
package version

import "fmt"

// Variables set at link time. Default to dev values.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns just the version string.
func Short() string {
	return Version
}

// Full returns the version, commit, and build date on one line.
func Full() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
