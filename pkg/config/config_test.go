package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/ghidra-install/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)

	assert.Equal(t, "ghidra", cfg.Tool)
	assert.Equal(t, "11.3.1", cfg.Fallback.Version)
	assert.Equal(t, "ghidra_11.3.1_PUBLIC_20250219", cfg.Fallback.Name)
	assert.Equal(t, "ghidra_11.3.1_PUBLIC_20250219.zip", cfg.DefaultArchiveName())
	assert.Equal(t, "Ghidra", cfg.Bundle.Name)
	assert.Equal(t, "ghidraRun", cfg.Bundle.EntryPoint)
	assert.Equal(t, []int{16, 32, 128, 256, 512}, cfg.Bundle.IconSizes)
	assert.Equal(t, ">=21", cfg.Java.Constraint)
	assert.True(t, filepath.IsAbs(cfg.InstallRoot), "install root should be expanded: %s", cfg.InstallRoot)
	assert.NotEmpty(t, cfg.AppsDir)
	assert.NoError(t, Validate(cfg))
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
install_root: `+filepath.Join(dir, "tools")+`
bundle:
  name: Ghidra
  launcher: ghidra-launcher
  entry_point: ghidraRun
  identifier: com.example.ghidra
java:
  skip: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tools"), cfg.InstallRoot)
	assert.Equal(t, "com.example.ghidra", cfg.Bundle.Identifier)
	assert.True(t, cfg.Java.Skip)
	// untouched sections keep their defaults
	assert.Equal(t, "ghidra_11.3.1_PUBLIC_20250219", cfg.Fallback.Name)
	assert.Equal(t, "NationalSecurityAgency/ghidra", cfg.GitHubRepo)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tool: [unterminated"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)
	cfg.LinkFilter = `filename.startsWith("ghidra_11")`

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.LinkFilter, loaded.LinkFilter)
	assert.Equal(t, cfg.InstallRoot, loaded.InstallRoot)
}

func TestValidate(t *testing.T) {
	valid := func() *types.Config {
		cfg, err := Defaults()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*types.Config)
		wantErr string
	}{
		{name: "defaults"},
		{name: "missing tool", mutate: func(c *types.Config) { c.Tool = "" }, wantErr: "tool"},
		{name: "missing fallback url", mutate: func(c *types.Config) { c.Fallback.URLTemplate = "" }, wantErr: "fallback.url_template"},
		{name: "fallback name for another tool", mutate: func(c *types.Config) { c.Fallback.Name = "ida_9.0" }, wantErr: "must start with ghidra_"},
		{name: "bad icon size", mutate: func(c *types.Config) { c.Bundle.IconSizes = []int{0} }, wantErr: "invalid icon size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "ghidra"), ExpandPath("~/ghidra"))
	assert.Equal(t, "/opt/ghidra", ExpandPath("/opt/ghidra"))
	assert.Equal(t, "", ExpandPath(""))
}

func TestDefaultAppsDir(t *testing.T) {
	assert.Equal(t, "/Applications", DefaultAppsDir("darwin"))
	assert.Equal(t, "applications", filepath.Base(DefaultAppsDir("linux")))
}
