package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/flanksource/ghidra-install/pkg/platform"
	"github.com/flanksource/ghidra-install/pkg/types"
	"gopkg.in/yaml.v3"
)

const (
	AppName    = "ghidra-install"
	ConfigFile = "config.yaml"
)

//go:embed defaults.yaml
var defaultConfigYAML []byte

// Defaults returns the embedded default configuration with paths expanded
func Defaults() (*types.Config, error) {
	var config types.Config
	if err := yaml.Unmarshal(defaultConfigYAML, &config); err != nil {
		return nil, fmt.Errorf("failed to parse embedded default config: %w", err)
	}
	applyDefaults(&config)
	return &config, nil
}

// DefaultConfigPath is $XDG_CONFIG_HOME/ghidra-install/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFile)
}

// Load reads the configuration at path merged over the defaults.
// An empty path means DefaultConfigPath, which may be absent; an explicit path must exist.
func Load(path string) (*types.Config, error) {
	var config types.Config
	if err := yaml.Unmarshal(defaultConfigYAML, &config); err != nil {
		return nil, fmt.Errorf("failed to parse embedded default config: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Unmarshalling over the defaults keeps every field the file does not set
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyDefaults(&config)
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// Save writes config as YAML
func Save(config *types.Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Finalize fills derived fields and validates config after command line overrides
func Finalize(config *types.Config) error {
	applyDefaults(config)
	return Validate(config)
}

// Validate checks the fields every install needs
func Validate(config *types.Config) error {
	var missing []string
	if config.Tool == "" {
		missing = append(missing, "tool")
	}
	if config.InstallRoot == "" {
		missing = append(missing, "install_root")
	}
	if config.Fallback.Version == "" {
		missing = append(missing, "fallback.version")
	}
	if config.Fallback.Name == "" {
		missing = append(missing, "fallback.name")
	}
	if config.Fallback.URLTemplate == "" {
		missing = append(missing, "fallback.url_template")
	}
	if config.Bundle.Name == "" {
		missing = append(missing, "bundle.name")
	}
	if config.Bundle.Launcher == "" {
		missing = append(missing, "bundle.launcher")
	}
	if config.Bundle.EntryPoint == "" {
		missing = append(missing, "bundle.entry_point")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	if !strings.HasPrefix(config.Fallback.Name, config.Tool+"_") {
		return fmt.Errorf("fallback.name %q must start with %s_", config.Fallback.Name, config.Tool)
	}
	for _, size := range config.Bundle.IconSizes {
		if size <= 0 || size > 1024 {
			return fmt.Errorf("invalid icon size %d", size)
		}
	}
	return nil
}

func applyDefaults(config *types.Config) {
	if config.AppsDir == "" {
		config.AppsDir = DefaultAppsDir(platform.Current().OS)
	}
	if config.TmpDir == "" {
		config.TmpDir = os.TempDir()
	}
	if config.Bundle.Icon == "" {
		config.Bundle.Icon = config.Bundle.Name
	}
	config.InstallRoot = ExpandPath(config.InstallRoot)
	config.AppsDir = ExpandPath(config.AppsDir)
	config.TmpDir = ExpandPath(config.TmpDir)
}

// DefaultAppsDir is where the launchable entry is written for goos
func DefaultAppsDir(goos string) string {
	if goos == "darwin" {
		return "/Applications"
	}
	return filepath.Join(xdg.DataHome, "applications")
}

// ExpandPath expands a leading ~ and makes relative paths absolute
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}
