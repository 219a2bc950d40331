// Package version provides version information for the noema-scan tooling.
package version

import (
	"fmt"
	"runtime"
)

// Version information, overridable at build time via -ldflags.
var (
	// Version is the application version.
	Version = "0.1.0"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build date/time.
	BuildDate = "unknown"

	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()

	// Platform is the OS/Arch combination.
	Platform = runtime.GOOS + "/" + runtime.GOARCH
)

// String returns the version as a string.
func String() string {
	if GitCommit != "unknown" {
		return fmt.Sprintf("%s (commit: %s)", Version, GitCommit)
	}
	return Version
}

// FullString returns detailed version information.
func FullString() string {
	return fmt.Sprintf("noema-scan %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nPlatform: %s",
		Version, GitCommit, BuildDate, GoVersion, Platform)
}
