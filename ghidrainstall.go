package ghidrainstall

import (
	"context"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"

	"github.com/flanksource/ghidra-install/pkg/config"
	"github.com/flanksource/ghidra-install/pkg/installer"
	"github.com/flanksource/ghidra-install/pkg/types"
)

// Re-export commonly used types for public API
type (
	Config        = types.Config
	InstallResult = types.InstallResult
	InstallStatus = types.InstallStatus
	StatusReport  = types.StatusReport
	CheckStatus   = types.CheckStatus
	StageError    = installer.StageError
)

// Re-export status constants
const (
	InstallStatusInstalled       = types.InstallStatusInstalled
	InstallStatusForcedInstalled = types.InstallStatusForcedInstalled
	InstallStatusRefreshed       = types.InstallStatusRefreshed
	InstallStatusDownloaded      = types.InstallStatusDownloaded
	InstallStatusUninstalled     = types.InstallStatusUninstalled
	InstallStatusFailed          = types.InstallStatusFailed

	CheckStatusOK       = types.CheckStatusOK
	CheckStatusOutdated = types.CheckStatusOutdated
	CheckStatusMissing  = types.CheckStatusMissing
	CheckStatusError    = types.CheckStatusError
	CheckStatusUnknown  = types.CheckStatusUnknown
)

// Re-export installer options
type InstallOption = installer.InstallOption

var (
	WithForce          = installer.WithForce
	WithDebug          = installer.WithDebug
	WithAssumeYes      = installer.WithAssumeYes
	WithSkipJava       = installer.WithSkipJava
	WithSkipDock       = installer.WithSkipDock
	WithOS             = installer.WithOS
	WithPrompter       = installer.WithPrompter
	WithRunner         = installer.WithRunner
	WithIconConverter  = installer.WithIconConverter
	WithDockRegistrar  = installer.WithDockRegistrar
	WithRuntimeChecker = installer.WithRuntimeChecker
	WithReleaseFinder  = installer.WithReleaseFinder
	WithDownloader     = installer.WithDownloader
	WithHTTPClient     = installer.WithHTTPClient
	IsFatal            = installer.IsFatal
	DefaultConfig      = config.Defaults
	LoadConfig         = config.Load
	DefaultConfigPath  = config.DefaultConfigPath
)

// Install runs the full install with cfg, or the defaults and config file when cfg is nil.
//
// Example:
//
//	result, err := ghidrainstall.Install(ctx, nil, ghidrainstall.WithAssumeYes(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Pretty())
func Install(ctx context.Context, cfg *Config, opts ...InstallOption) (*InstallResult, error) {
	return run(ctx, "install", cfg, opts, (*installer.Installer).Install)
}

// Download fetches the archive into the install root without installing it
func Download(ctx context.Context, cfg *Config, opts ...InstallOption) (*InstallResult, error) {
	return run(ctx, "download", cfg, opts, (*installer.Installer).DownloadOnly)
}

// Uninstall removes the bundle and its extraction
func Uninstall(ctx context.Context, cfg *Config, opts ...InstallOption) (*InstallResult, error) {
	return run(ctx, "uninstall", cfg, opts, (*installer.Installer).Uninstall)
}

// Status reports what is installed
func Status(ctx context.Context, cfg *Config, opts ...InstallOption) (StatusReport, error) {
	inst, err := newInstaller(cfg, opts)
	if err != nil {
		return StatusReport{}, err
	}
	return inst.Status(ctx, &task.Task{}), nil
}

// InstallWithTask runs the install on an existing task, for callers that manage their own progress output
func InstallWithTask(ctx context.Context, cfg *Config, t *task.Task, opts ...InstallOption) (*InstallResult, error) {
	inst, err := newInstaller(cfg, opts)
	if err != nil {
		return nil, err
	}
	return inst.Install(ctx, t)
}

func newInstaller(cfg *Config, opts []InstallOption) (*installer.Installer, error) {
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, err
		}
	}
	return installer.New(cfg, opts...)
}

type stageFunc func(*installer.Installer, context.Context, *task.Task) (*InstallResult, error)

func run(ctx context.Context, name string, cfg *Config, opts []InstallOption, fn stageFunc) (*InstallResult, error) {
	inst, err := newInstaller(cfg, opts)
	if err != nil {
		return nil, err
	}

	var result *InstallResult
	var runErr error

	task.StartTask(name, func(_ flanksourceContext.Context, t *task.Task) (interface{}, error) {
		result, runErr = fn(inst, ctx, t)
		return result, runErr
	})

	clicky.WaitForGlobalCompletion()

	return result, runErr
}
