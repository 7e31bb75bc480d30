// Package version reports the build of the grader binary.
package version

import (
	"embed"
	"runtime"
	"runtime/debug"
	"strings"
)

// version.txt is generated by release builds
//
//go:embed version.*
var versions embed.FS

// Version is the build version, or the module version for go install builds
var Version = "unable to get version"

func init() {
	if b, err := versions.ReadFile("version.txt"); err == nil {
		Version = strings.TrimSpace(string(b))
		return
	}
	if inf, ok := debug.ReadBuildInfo(); ok {
		Version = inf.Main.Version
	}
}

// Info describes the running binary for the version endpoint
type Info struct {
	BuildVersion string   `json:"buildVersion"`
	GoVersion    string   `json:"goVersion"`
	Platform     string   `json:"platform"`
	OS           string   `json:"os"`
	Modes        []string `json:"modes"`
	SpecFormats  []string `json:"specFormats"`
}

// Get returns the version info
func Get() Info {
	return Info{
		BuildVersion: Version,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOARCH,
		OS:           runtime.GOOS,
		Modes:        []string{"sequence", "test_cases"},
		SpecFormats:  []string{"json", "yaml"},
	}
}
