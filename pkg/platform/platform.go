package platform

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Platform represents the OS/Architecture the installer lays files out for
type Platform struct {
	OS   string `json:"os" yaml:"os"`
	Arch string `json:"arch" yaml:"arch"`
}

// Supported lists the operating systems with a bundle layout
var Supported = []string{"darwin", "linux"}

// Global override for platform detection
var (
	globalOSOverride string
	globalMutex      sync.RWMutex
)

// String returns a string representation of the platform (e.g., "darwin-arm64")
func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

// SetOSOverride sets the global OS override from the --os flag, "" clears it
func SetOSOverride(os string) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalOSOverride = os
}

// Current returns the current platform, respecting the global override
func Current() Platform {
	globalMutex.RLock()
	defer globalMutex.RUnlock()

	os := globalOSOverride
	if os == "" {
		os = runtime.GOOS
	}
	return Platform{OS: os, Arch: runtime.GOARCH}
}

// Parse parses an OS name, optionally followed by an architecture (e.g. "macos" or "linux-amd64"),
// and rejects operating systems without a bundle layout
func Parse(platformStr string) (Platform, error) {
	parts := strings.SplitN(platformStr, "-", 2)
	p := Platform{OS: parts[0], Arch: runtime.GOARCH}
	if len(parts) == 2 {
		p.Arch = parts[1]
	}
	p = p.Normalize()
	if !p.IsSupported() {
		return Platform{}, fmt.Errorf("unsupported os %q (expected one of %s)", platformStr, strings.Join(Supported, ", "))
	}
	return p, nil
}

// Normalize normalizes platform values to standard forms
func (p Platform) Normalize() Platform {
	return Platform{
		OS:   normalizeOS(p.OS),
		Arch: normalizeArch(p.Arch),
	}
}

func normalizeOS(os string) string {
	switch strings.ToLower(os) {
	case "macos", "osx", "mac":
		return "darwin"
	default:
		return strings.ToLower(os)
	}
}

func normalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "x86_64", "x64", "amd64":
		return "amd64"
	case "aarch64", "arm64":
		return "arm64"
	default:
		return strings.ToLower(arch)
	}
}

// IsSupported returns true if the OS has a bundle layout
func (p Platform) IsSupported() bool {
	return lo.Contains(Supported, p.OS)
}

// IsDarwin returns true if the platform uses the .app bundle layout
func (p Platform) IsDarwin() bool {
	return p.OS == "darwin"
}
