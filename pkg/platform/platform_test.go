package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Platform
		wantErr  bool
	}{
		{input: "darwin", expected: Platform{OS: "darwin", Arch: runtime.GOARCH}},
		{input: "macos", expected: Platform{OS: "darwin", Arch: runtime.GOARCH}},
		{input: "Linux", expected: Platform{OS: "linux", Arch: runtime.GOARCH}},
		{input: "linux-x86_64", expected: Platform{OS: "linux", Arch: "amd64"}},
		{input: "osx-aarch64", expected: Platform{OS: "darwin", Arch: "arm64"}},
		{input: "windows", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "darwin, linux")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestCurrentOverride(t *testing.T) {
	defer SetOSOverride("")

	assert.Equal(t, runtime.GOOS, Current().OS)

	SetOSOverride("linux")
	assert.Equal(t, "linux", Current().OS)
	assert.Equal(t, runtime.GOARCH, Current().Arch)
	assert.False(t, Current().IsDarwin())

	SetOSOverride("darwin")
	assert.True(t, Current().IsDarwin())
	assert.Equal(t, "darwin-"+runtime.GOARCH, Current().String())

	SetOSOverride("")
	assert.Equal(t, runtime.GOOS, Current().OS)
}
