package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArchiveName(t *testing.T) {
	tests := []struct {
		filename    string
		version     string
		rootDirName string
	}{
		{"ghidra_11.3.1_PUBLIC_20250219.zip", "11.3.1", "ghidra_11.3.1_PUBLIC_20250219"},
		{"ghidra_11.2_PUBLIC_20240926.zip", "11.2", "ghidra_11.2_PUBLIC_20240926"},
		{"ghidra_10.4_PUBLIC_20230928.zip", "10.4", "ghidra_10.4_PUBLIC_20230928"},
		{"/tmp/downloads/ghidra_11.0.3_PUBLIC_20240410.zip", "11.0.3", "ghidra_11.0.3_PUBLIC_20240410"},
		{"ghidra_9.2.2_PUBLIC.zip", "9.2.2", "ghidra_9.2.2_PUBLIC"},
		{"ghidra_10.0.4.1_PUBLIC_20210928.zip", "10.0.4.1", "ghidra_10.0.4.1_PUBLIC_20210928"},
		{"ghidra_11_PUBLIC_20231208.zip", "11", "ghidra_11_PUBLIC_20231208"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			d, err := ParseArchiveName(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.version, d.Version)
			assert.Equal(t, tt.rootDirName, d.RootDirName)
		})
	}
}

func TestParseArchiveNameRejectsUnmatched(t *testing.T) {
	for _, filename := range []string{
		"",
		"ghidra.zip",
		"ghidra_latest.zip",
		"ghidra_11.3.1_PUBLIC_20250219.tar.gz",
		"ghidra_11.3.1_DEV_20250219.zip",
		"ida_11.3.1_PUBLIC_20250219.zip",
		"ghidra_.1_PUBLIC_20250219.zip",
	} {
		t.Run(filename, func(t *testing.T) {
			d, err := ParseArchiveName(filename)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnrecognizedArchive), "expected ErrUnrecognizedArchive, got %v", err)
			assert.True(t, d.IsZero())
		})
	}
}

func TestParseArchiveNameForCustomTool(t *testing.T) {
	d, err := ParseArchiveNameFor("tool", "tool_1.2.3_PUBLIC_x.zip")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", d.Version)
	assert.Equal(t, "tool_1.2.3_PUBLIC_x", d.RootDirName)

	assert.False(t, IsArchiveName("tool", "ghidra_1.2.3_PUBLIC_x.zip"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"v1.2.3", "1.2.3"},
		{"release-1.2.3", "1.2.3"},
		{" 21.0.2 ", "21.0.2"},
		{"1.8.0_292", "1.8.0"},
		{"11.0.2.1", "11.0.2"},
		{"17+35", "17"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.input), "Normalize(%q)", tt.input)
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare("11.3.1", "11.3.1"))
	assert.Equal(t, 1, Compare("11.3.1", "11.2"))
	assert.Equal(t, -1, Compare("10.4", "11.0"))
	assert.True(t, IsNewer("11.3.1", "11.3"))
	assert.False(t, IsNewer("11.3", "11.3.0"))
}

func TestConstraint(t *testing.T) {
	c, err := ParseConstraint(">=21")
	require.NoError(t, err)
	assert.True(t, c.Check("21.0.2"))
	assert.True(t, c.Check("23"))
	assert.False(t, c.Check("17.0.9"))
	assert.False(t, c.Check("1.8.0_292"))
	assert.False(t, c.Check("not-a-version"))
	assert.Equal(t, ">=21", c.String())

	legacy, err := ParseConstraint(">=8, <9")
	require.NoError(t, err)
	assert.True(t, legacy.Check("1.8.0_292"))
	assert.True(t, legacy.Check("8.0.392"))

	anyVersion, err := ParseConstraint("")
	require.NoError(t, err)
	assert.True(t, anyVersion.Check("anything"))
	assert.Equal(t, "*", anyVersion.String())

	_, err = ParseConstraint(">>nope")
	assert.Error(t, err)
}

func TestExtractFromOutput(t *testing.T) {
	out := `openjdk version "21.0.2" 2024-01-16
OpenJDK Runtime Environment Temurin-21.0.2+13 (build 21.0.2+13)`
	v, err := ExtractFromOutput(out, `version\s+"?(\d+(?:\.\d+)*)"?`)
	require.NoError(t, err)
	assert.Equal(t, "21.0.2", v)

	_, err = ExtractFromOutput("no digits here", `version "(\d+)"`)
	assert.Error(t, err)

	_, err = ExtractFromOutput("x", "(")
	assert.Error(t, err)
}
