package cmd

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/ghidra-install/pkg/config"
	"github.com/flanksource/ghidra-install/pkg/platform"
)

func resetFlags() {
	installRoot, appsDir, tmpDir, osOverride = "", "", "", ""
	skipJava, skipDock = false, false
	platform.SetOSOverride("")
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name  string
		setup func(dir string)
		check func(t *testing.T, dir string, cfgInstallRoot, cfgAppsDir, cfgTmpDir string)
	}{
		{
			name: "paths from flags",
			setup: func(dir string) {
				installRoot = filepath.Join(dir, "root")
				appsDir = filepath.Join(dir, "apps")
				tmpDir = filepath.Join(dir, "tmp")
			},
			check: func(t *testing.T, dir string, root, apps, tmp string) {
				assert.Equal(t, filepath.Join(dir, "root"), root)
				assert.Equal(t, filepath.Join(dir, "apps"), apps)
				assert.Equal(t, filepath.Join(dir, "tmp"), tmp)
			},
		},
		{
			name: "os override picks that platform's apps dir",
			setup: func(dir string) {
				if runtime.GOOS == "darwin" {
					osOverride = "linux"
				} else {
					osOverride = "darwin"
				}
			},
			check: func(t *testing.T, dir string, root, apps, tmp string) {
				assert.Equal(t, config.DefaultAppsDir(osOverride), apps)
				assert.Equal(t, osOverride, platform.Current().OS)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			defer resetFlags()
			dir := t.TempDir()
			tt.setup(dir)
			require.NoError(t, applyPlatform())

			cfg, err := config.Defaults()
			require.NoError(t, err)
			require.NoError(t, applyOverrides(cfg))
			tt.check(t, dir, cfg.InstallRoot, cfg.AppsDir, cfg.TmpDir)
		})
	}
}

func TestApplyOverridesSkipFlags(t *testing.T) {
	resetFlags()
	defer resetFlags()
	skipJava, skipDock = true, true

	cfg, err := config.Defaults()
	require.NoError(t, err)
	require.NoError(t, applyOverrides(cfg))
	assert.True(t, cfg.Java.Skip)
	assert.True(t, cfg.SkipDock)
}

func TestApplyPlatformRejectsUnknownOS(t *testing.T) {
	resetFlags()
	defer resetFlags()
	osOverride = "windows"

	err := applyPlatform()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported os")
	assert.Equal(t, runtime.GOOS, platform.Current().OS)
}

func TestApplyPlatformAlias(t *testing.T) {
	resetFlags()
	defer resetFlags()
	osOverride = "macos"

	require.NoError(t, applyPlatform())
	assert.Equal(t, "darwin", platform.Current().OS)
}

func TestVersionString(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2025-01-01", "true")
	defer SetVersion("dev", "unknown", "unknown", "false")

	s := versionString()
	assert.Contains(t, s, "ghidra-install 1.2.3")
	assert.Contains(t, s, "abc123")
	assert.Contains(t, s, "dirty")
}

func TestWriteConfig(t *testing.T) {
	resetFlags()
	defer resetFlags()
	dir := t.TempDir()
	installRoot = filepath.Join(dir, "opt", "ghidra")

	cfg, err := config.Defaults()
	require.NoError(t, err)
	require.NoError(t, applyOverrides(cfg))

	path := filepath.Join(dir, "conf", "config.yaml")
	require.NoError(t, writeConfig(cfg, path, false))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, installRoot, loaded.InstallRoot)

	err = writeConfig(cfg, path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cfg.InstallRoot = filepath.Join(dir, "other")
	require.NoError(t, writeConfig(cfg, path, true))
	loaded, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.InstallRoot, loaded.InstallRoot)
}
