package installer

import (
	"net/http"

	"github.com/flanksource/ghidra-install/pkg/dock"
	"github.com/flanksource/ghidra-install/pkg/icon"
	"github.com/flanksource/ghidra-install/pkg/platform"
	depsruntime "github.com/flanksource/ghidra-install/pkg/runtime"
	"github.com/flanksource/ghidra-install/pkg/source"
	"github.com/flanksource/ghidra-install/pkg/system"
)

// InstallOptions configures the installation behavior
type InstallOptions struct {
	// Force bypasses the extraction and dock existence checks
	Force bool
	// Debug keeps downloaded archives
	Debug     bool
	AssumeYes bool
	SkipJava  bool
	SkipDock  bool
	// GOOS selects the bundle layout, icon converter and dock registrar
	GOOS string

	prompter    system.Prompter
	runner      system.Runner
	icons       icon.Converter
	registrar   dock.Registrar
	checker     depsruntime.Checker
	releases    source.ReleaseFinder
	setReleases bool
	downloader  source.DownloadFunc
	httpClient  *http.Client
}

// InstallOption is a functional option for configuring installation
type InstallOption func(*InstallOptions)

// DefaultOptions returns the default installation options
func DefaultOptions() InstallOptions {
	return InstallOptions{GOOS: platform.Current().OS}
}

// WithForce enables or disables forced reinstallation
func WithForce(force bool) InstallOption {
	return func(opts *InstallOptions) {
		opts.Force = force
	}
}

// WithDebug enables debug mode, keeping downloaded files
func WithDebug(debug bool) InstallOption {
	return func(opts *InstallOptions) {
		opts.Debug = debug
	}
}

// WithAssumeYes answers the download prompt with yes
func WithAssumeYes(yes bool) InstallOption {
	return func(opts *InstallOptions) {
		opts.AssumeYes = yes
	}
}

// WithSkipJava disables the Java runtime check
func WithSkipJava(skip bool) InstallOption {
	return func(opts *InstallOptions) {
		opts.SkipJava = skip
	}
}

// WithSkipDock disables dock registration
func WithSkipDock(skip bool) InstallOption {
	return func(opts *InstallOptions) {
		opts.SkipDock = skip
	}
}

// WithOS overrides the target operating system
func WithOS(goos string) InstallOption {
	return func(opts *InstallOptions) {
		if goos != "" {
			opts.GOOS = goos
		}
	}
}

// WithPrompter sets the download consent prompter
func WithPrompter(p system.Prompter) InstallOption {
	return func(opts *InstallOptions) {
		opts.prompter = p
	}
}

// WithRunner sets the command runner used by the default collaborators
func WithRunner(r system.Runner) InstallOption {
	return func(opts *InstallOptions) {
		opts.runner = r
	}
}

// WithIconConverter replaces the icon converter
func WithIconConverter(c icon.Converter) InstallOption {
	return func(opts *InstallOptions) {
		opts.icons = c
	}
}

// WithDockRegistrar replaces the dock registrar
func WithDockRegistrar(r dock.Registrar) InstallOption {
	return func(opts *InstallOptions) {
		opts.registrar = r
	}
}

// WithRuntimeChecker replaces the Java checker
func WithRuntimeChecker(c depsruntime.Checker) InstallOption {
	return func(opts *InstallOptions) {
		opts.checker = c
	}
}

// WithReleaseFinder replaces the GitHub release lookup; nil disables it
func WithReleaseFinder(f source.ReleaseFinder) InstallOption {
	return func(opts *InstallOptions) {
		opts.releases = f
		opts.setReleases = true
	}
}

// WithDownloader replaces the archive downloader
func WithDownloader(fn source.DownloadFunc) InstallOption {
	return func(opts *InstallOptions) {
		opts.downloader = fn
	}
}

// WithHTTPClient sets the client used to scrape the download page
func WithHTTPClient(client *http.Client) InstallOption {
	return func(opts *InstallOptions) {
		opts.httpClient = client
	}
}
