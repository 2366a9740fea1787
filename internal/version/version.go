// Package version holds build metadata injected at link time.
package version

import "fmt"

var (
	// Version is the release version, set via -ldflags
	Version = "dev"
	// GitSHA identifies the commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitSHA, BuildTime)
}
