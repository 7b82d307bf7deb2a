// Package version provides build version information for tate.
package version

// Version is the build version string, set by ldflags during build.
// Format: vX.Y.Z or vX.Y.Z-dev for development builds.
var Version = "v0.3.0-dev"

// BuildTime is the build timestamp, set by ldflags during build.
var BuildTime = "unknown"

// String returns "Version (BuildTime)".
func String() string {
	return Version + " (" + BuildTime + ")"
}
