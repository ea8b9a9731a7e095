package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/ghidra-install/pkg/types"
)

func writeExtraction(t *testing.T, mode os.FileMode, properties string) string {
	dir := filepath.Join(t.TempDir(), "ghidra_11.3.1_PUBLIC")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Ghidra"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ghidraRun"), []byte("#!/bin/sh\n"), mode))
	if properties != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, PropertiesFile), []byte(properties), 0644))
	}
	return dir
}

func TestVerifyExtraction(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T) string
		status     types.CheckStatus
		version    string
		errContain string
	}{
		{
			name: "complete extraction",
			setup: func(t *testing.T) string {
				return writeExtraction(t, 0755, "application.name=Ghidra\napplication.version=11.3.1\napplication.release.name=PUBLIC\n")
			},
			status:  types.CheckStatusOK,
			version: "11.3.1",
		},
		{
			name: "without properties",
			setup: func(t *testing.T) string {
				return writeExtraction(t, 0755, "")
			},
			status: types.CheckStatusOK,
		},
		{
			name: "entry point not executable",
			setup: func(t *testing.T) string {
				return writeExtraction(t, 0644, "")
			},
			status:     types.CheckStatusError,
			errContain: "not executable",
		},
		{
			name: "entry point missing",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				return dir
			},
			status:     types.CheckStatusError,
			errContain: "ghidraRun not found",
		},
		{
			name: "no extraction",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			status:     types.CheckStatusMissing,
			errContain: "extraction not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := VerifyExtraction(tt.setup(t), "ghidraRun")
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.version, result.Version)
			if tt.errContain != "" {
				assert.Contains(t, result.Error, tt.errContain)
			} else {
				assert.Empty(t, result.Error)
			}
		})
	}
}
