// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables - set via ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"
	// Commit is the git commit hash
	Commit = "none"
	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// GetVersion returns the full version string including commit, build date and
// the Go runtime that produced the binary.
func GetVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", Version, Commit, BuildDate, runtime.Version())
}

// GetShortVersion returns only the semantic version.
func GetShortVersion() string {
	return Version
}
