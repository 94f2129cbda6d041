// Package version holds build metadata set with -ldflags, e.g.
// -X github.com/jmylchreest/emojiart/internal/version.Version=x.y.z.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release version.
	Version = "dev"

	// Commit is the source revision.
	Commit = "unknown"

	// Date is the build time in RFC3339.
	Date = "unknown"
)

// Info is the build metadata in one value.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata of the running binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns the one-line version banner.
func String() string {
	info := GetInfo()
	if Commit == "unknown" {
		return fmt.Sprintf("emojiart %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
	}
	commit := Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("emojiart %s (commit %s, built %s, %s, %s)",
		info.Version, commit, info.Date, info.GoVersion, info.Platform)
}
