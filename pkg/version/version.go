// Package version provides build and version information for conductorboot.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/Aman-CERP/conductorboot/internal/modules"
)

// Version is set via ldflags at build time:
// -X github.com/Aman-CERP/conductorboot/pkg/version.Version=$(VERSION)
var Version = "dev"

// Build information set via ldflags at build time. When they are left at
// "unknown", the VCS stamp embedded by the Go toolchain is used instead.
var (
	// Commit is the git commit hash.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary.
	GoVersion = runtime.Version()
)

const shortCommitLen = 12

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version        string   `json:"version"`
	Commit         string   `json:"commit"`
	Date           string   `json:"date"`
	GoVersion      string   `json:"go_version"`
	OS             string   `json:"os"`
	Arch           string   `json:"arch"`
	DefaultBackend string   `json:"default_backend"`
	Backends       []string `json:"backends"`
	SearchVersions []string `json:"search_versions"`
}

// String returns a formatted version string with all build info.
func String() string {
	commit, date := stamp()
	return fmt.Sprintf("conductorboot %s (commit: %s, built: %s, go: %s)",
		Version, commit, date, GoVersion)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// GetInfo returns structured version information, including the storage
// backends and index engine generations this binary can resolve.
func GetInfo() BuildInfo {
	commit, date := stamp()

	backends := modules.Backends()
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.String())
	}

	return BuildInfo{
		Version:        Version,
		Commit:         commit,
		Date:           date,
		GoVersion:      GoVersion,
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		DefaultBackend: modules.DefaultBackend.String(),
		Backends:       names,
		SearchVersions: []string{modules.SearchV2.String(), modules.SearchV5.String()},
	}
}

// stamp returns the commit and date, preferring ldflags values.
func stamp() (commit, date string) {
	commit, date = Commit, Date
	if commit != "unknown" && date != "unknown" {
		return commit, date
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, date
	}
	return fromSettings(commit, date, info.Settings)
}

// fromSettings fills unknown commit and date values from vcs.* build settings.
func fromSettings(commit, date string, settings []debug.BuildSetting) (string, string) {
	var revision, modified string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			if date == "unknown" && s.Value != "" {
				date = s.Value
			}
		case "vcs.modified":
			modified = s.Value
		}
	}

	if commit == "unknown" && revision != "" {
		if len(revision) > shortCommitLen {
			revision = revision[:shortCommitLen]
		}
		if modified == "true" {
			revision += "-dirty"
		}
		commit = revision
	}
	return commit, date
}
