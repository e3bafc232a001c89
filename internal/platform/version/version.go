// Package version exposes the build identity stamped into the binary.
package version

import "runtime"

// Overridden at build time via -ldflags "-X ...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build identity reported on the health endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// Short renders the compact "version (commit)" form used in startup logs.
func (i Info) Short() string {
	return i.Version + " (" + i.Commit + ")"
}
