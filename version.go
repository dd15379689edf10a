package lokal

// Version information for lokal.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/mahmut0ff/lokal.Version=1.0.0"
const (
	// Name is the application name.
	Name = "lokal"

	// Description is a short description of the application.
	Description = "Translation resolution and caching engine"

	// Version is the semantic version of the application.
	// Override at build time with ldflags for releases.
	Version = "0.1.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/mahmut0ff/lokal"

	// License is the software license.
	License = "MIT"
)

// BuildInfo contains build-time information.
// These are typically set via ldflags during build.
var (
	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}
