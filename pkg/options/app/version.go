package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/pflag"
)

// Build information. Populated at build-time.
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// VersionInfo holds the version information.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion returns the version string.
func GetVersion() string {
	return Version
}

// GetVersionInfo returns the full version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}
}

// String returns version info as a string.
func (v VersionInfo) String() string {
	return fmt.Sprintf(
		"Version: %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nPlatform: %s",
		v.Version, v.GitCommit, v.BuildDate, v.GoVersion, v.Platform,
	)
}

// AddVersionFlag registers a --version/-v flag on fs.
func AddVersionFlag(fs *pflag.FlagSet) {
	fs.BoolP("version", "v", false, "Print version information and quit")
}

// PrintAndExitIfVersionRequested prints version info and exits 0 if the
// --version flag registered by AddVersionFlag was set.
func PrintAndExitIfVersionRequested(fs *pflag.FlagSet) {
	versionFlag, err := fs.GetBool("version")
	if err != nil || !versionFlag {
		return
	}
	fmt.Println(GetVersionInfo().String())
	os.Exit(0)
}
