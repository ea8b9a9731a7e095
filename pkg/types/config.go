package types

import (
	"path/filepath"
)

// Config is the ghidra-install configuration file
type Config struct {
	// Tool is the archive prefix, e.g. "ghidra" for ghidra_11.3.1_PUBLIC_20250219.zip
	Tool string `json:"tool" yaml:"tool"`
	// InstallRoot is where archives are expected and extracted
	InstallRoot string `json:"install_root" yaml:"install_root"`
	// AppsDir is the directory holding the application bundle (or desktop entry on linux)
	AppsDir string `json:"apps_dir,omitempty" yaml:"apps_dir,omitempty"`
	// TmpDir receives downloads before they are used
	TmpDir string `json:"tmp_dir,omitempty" yaml:"tmp_dir,omitempty"`
	// DownloadPage is scraped for the latest public archive link
	DownloadPage string `json:"download_page,omitempty" yaml:"download_page,omitempty"`
	// GitHubRepo (owner/repo) is queried for the latest release when scraping finds nothing
	GitHubRepo string `json:"github_repo,omitempty" yaml:"github_repo,omitempty"`
	// LinkFilter is a CEL expression over `url` and `filename` selecting scraped links
	LinkFilter string `json:"link_filter,omitempty" yaml:"link_filter,omitempty"`
	// Fallback is the known-good release used when no link can be discovered
	Fallback FallbackRelease `json:"fallback" yaml:"fallback"`
	// Bundle describes the application bundle
	Bundle BundleConfig `json:"bundle" yaml:"bundle"`
	// Java configures the runtime dependency check
	Java JavaConfig `json:"java" yaml:"java"`
	// SkipDock disables dock registration
	SkipDock bool `json:"skip_dock,omitempty" yaml:"skip_dock,omitempty"`
}

// DefaultArchiveName is the exact filename looked for in the install root
func (c Config) DefaultArchiveName() string {
	return c.Fallback.Name + ".zip"
}

// ExpectedArchivePath is the only local archive path that is ever used without downloading
func (c Config) ExpectedArchivePath() string {
	return filepath.Join(c.InstallRoot, c.DefaultArchiveName())
}

// FallbackRelease is the built-in known-good release
type FallbackRelease struct {
	Version string `json:"version" yaml:"version"`
	// Name is the archive filename without extension
	Name string `json:"name" yaml:"name"`
	// URLTemplate is rendered with {{.version}} and {{.name}}
	URLTemplate string `json:"url_template" yaml:"url_template"`
}

// BundleConfig describes the generated application bundle
type BundleConfig struct {
	// Name is the display name, also the bundle directory name (Name.app)
	Name       string `json:"name" yaml:"name"`
	Identifier string `json:"identifier" yaml:"identifier"`
	// Launcher is the executable written into the bundle
	Launcher string `json:"launcher" yaml:"launcher"`
	// Icon is the icon file name without extension
	Icon string `json:"icon" yaml:"icon"`
	// EntryPoint is the tool's launch script relative to the extraction root
	EntryPoint string `json:"entry_point" yaml:"entry_point"`
	// IconSources are doublestar patterns, relative to the extraction, tried in order
	IconSources []string `json:"icon_sources,omitempty" yaml:"icon_sources,omitempty"`
	// IconSizes are the pixel sizes generated, each also at @2x
	IconSizes []int `json:"icon_sizes,omitempty" yaml:"icon_sizes,omitempty"`
}

// JavaConfig configures the Java runtime check
type JavaConfig struct {
	Skip bool `json:"skip,omitempty" yaml:"skip,omitempty"`
	// Constraint is a semver constraint such as ">=21"
	Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	// BrewCask is installed with `brew install --cask` when Java is missing
	BrewCask string `json:"brew_cask,omitempty" yaml:"brew_cask,omitempty"`
	// Remediate enables the brew installation attempt
	Remediate bool `json:"remediate,omitempty" yaml:"remediate,omitempty"`
}
