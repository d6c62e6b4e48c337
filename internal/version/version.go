// Package version exposes build metadata.
package version

import (
	"fmt"
	"runtime/debug"
)

// Overridable via ldflags at build time.
var (
	Version    = "dev"
	CommitHash = ""
)

// Info returns "version (shorthash)" with the hash taken from VCS build
// info when ldflags did not set one.
func Info() string {
	if CommitHash == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					CommitHash = setting.Value
				}
			}
		}
	}
	if CommitHash == "" {
		return Version
	}
	short := CommitHash
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, short)
}
