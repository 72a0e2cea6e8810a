// Package version carries build metadata injected via -ldflags.
package version

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"

	// BuildTime is injected at build time.
	BuildTime = ""

	// GitCommit is the commit hash injected at build time.
	GitCommit = ""
)

// GetVersion returns the full human-readable version string.
func GetVersion() string {
	v := "v" + Version
	if BuildTime != "" {
		v += " (built " + BuildTime + ")"
	}
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		v += " commit " + commit
	}
	return v
}
