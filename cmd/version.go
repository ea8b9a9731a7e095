package cmd

import (
	"fmt"
	"runtime"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	dirty   = "false"
)

// SetVersion records the build information injected by the linker
func SetVersion(v, c, d, dt string) {
	version, commit, date, dirty = v, c, d, dt
}

func versionString() string {
	s := fmt.Sprintf("ghidra-install %s (commit %s, built %s, %s/%s)", version, commit, date, runtime.GOOS, runtime.GOARCH)
	if dirty == "true" {
		s += " dirty"
	}
	return s
}
