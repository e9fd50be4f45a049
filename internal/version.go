package internal

import (
	"fmt"
	"runtime"
)

// Will be set at build time using -ldflags
var (
	Version = "v0.1.0"

	BuildType = "dev"

	// Time the binary was built (set during build with -ldflags).
	BuildTime string

	GitCommit = "unknown"
)

// FullVersion returns the version string shown by the version command.
func FullVersion() string {
	return fmt.Sprintf("%s (%s, %s, %s/%s)", Version, BuildType, GitCommit, runtime.GOOS, runtime.GOARCH)
}
