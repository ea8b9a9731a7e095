package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/bundle"
	"github.com/flanksource/ghidra-install/pkg/dock"
	"github.com/flanksource/ghidra-install/pkg/extract"
	"github.com/flanksource/ghidra-install/pkg/icon"
	depsruntime "github.com/flanksource/ghidra-install/pkg/runtime"
	"github.com/flanksource/ghidra-install/pkg/source"
	"github.com/flanksource/ghidra-install/pkg/system"
	"github.com/flanksource/ghidra-install/pkg/types"
	"github.com/flanksource/ghidra-install/pkg/utils"
	"github.com/flanksource/ghidra-install/pkg/verify"
	"github.com/flanksource/ghidra-install/pkg/version"
)

// Installer runs the install stages in order: acquire the archive, name it, extract it,
// check the runtime, build the bundle with its icon, then register it in the dock
type Installer struct {
	config    *types.Config
	options   InstallOptions
	acquirer  *source.Acquirer
	bundle    *bundle.Materializer
	icons     icon.Converter
	registrar dock.Registrar
	// checker is nil when the runtime check is skipped
	checker depsruntime.Checker
}

// New creates an installer for config. Collaborators that are not injected are
// created for options.GOOS.
func New(config *types.Config, opts ...InstallOption) (*Installer, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	runner := options.runner
	if runner == nil {
		runner = system.NewRunner(nil)
	}
	prompter := options.prompter
	if prompter == nil {
		prompter = system.NewPrompter(options.AssumeYes)
	}

	sourceOpts := []source.Option{source.WithPrompter(prompter)}
	if options.setReleases {
		sourceOpts = append(sourceOpts, source.WithReleaseFinder(options.releases))
	}
	if options.downloader != nil {
		sourceOpts = append(sourceOpts, source.WithDownloader(options.downloader))
	}
	if options.httpClient != nil {
		sourceOpts = append(sourceOpts, source.WithHTTPClient(options.httpClient))
	}
	acquirer, err := source.New(config, sourceOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid source configuration: %w", err)
	}

	i := &Installer{
		config:    config,
		options:   options,
		acquirer:  acquirer,
		bundle:    bundle.NewFor(options.GOOS, config.AppsDir, config.Bundle),
		icons:     options.icons,
		registrar: options.registrar,
		checker:   options.checker,
	}
	if i.icons == nil {
		i.icons = icon.NewConverter(options.GOOS, runner, config.Bundle.IconSources, config.Bundle.IconSizes)
	}
	if i.registrar == nil {
		i.registrar = dock.NewRegistrar(options.GOOS, runner)
	}
	if options.SkipJava || config.Java.Skip {
		i.checker = nil
	} else if i.checker == nil {
		i.checker = depsruntime.NewJavaChecker(runner, config.Java.Constraint, config.Java.BrewCask)
	}
	return i, nil
}

// Bundle returns the bundle materializer
func (i *Installer) Bundle() *bundle.Materializer {
	return i.bundle
}

func (i *Installer) fail(result *types.InstallResult, start time.Time, err error) (*types.InstallResult, error) {
	result.Status = types.InstallStatusFailed
	result.Error = err
	result.Duration = time.Since(start)
	return result, err
}

// Install runs every stage. Fatal stage errors stop the run and are returned as *StageError;
// degraded outcomes are collected in the result's warnings.
func (i *Installer) Install(ctx context.Context, t *task.Task) (*types.InstallResult, error) {
	start := time.Now()
	result := &types.InstallResult{Context: types.ResolutionContext{InstallRoot: i.config.InstallRoot}}

	cleanup := NewCleanupManager(i.options.Debug, t)
	defer cleanup.Cleanup()

	t.SetDescription("Locating archive")
	acquired, err := i.acquirer.Acquire(ctx, t)
	if err != nil {
		return i.fail(result, start, fatal(StageSource, err))
	}
	cleanup.AddDirectory(acquired.TempDir)
	for _, w := range acquired.Warnings {
		degrade(result, StageSource, w)
	}
	result.Context = result.Context.WithArchive(acquired.Archive)

	descriptor, err := i.describe(acquired)
	if err != nil {
		return i.fail(result, start, fatal(StageVersion, err))
	}
	result.Context = result.Context.WithDescriptor(descriptor)
	t.V(2).Infof("Resolved %s", descriptor)

	extracted, err := extract.Ensure(acquired.Archive.Location, i.config.InstallRoot, descriptor.RootDirName, i.options.Force, t)
	if err != nil {
		return i.fail(result, start, fatal(StageExtract, err))
	}
	result.Context = result.Context.WithExtractionPath(extracted.Path)
	result.ExtractionSkipped = extracted.Skipped

	i.checkRuntime(ctx, t, result)

	t.SetDescription(fmt.Sprintf("Building %s", i.config.Bundle.Name))
	bundleExisted := i.bundle.Exists()
	staged, err := i.bundle.Stage(descriptor, extracted.Path, t)
	if err != nil {
		return i.fail(result, start, fatal(StageBundle, err))
	}

	iconPath, err := i.icons.Generate(ctx, extracted.Path, staged.ResourcesDir, i.config.Bundle.Icon, t)
	if err != nil {
		t.Warnf("Could not generate an icon: %v", err)
		degrade(result, StageIcon, fmt.Errorf("could not generate an icon: %w", err))
	} else {
		t.V(2).Infof("Icon written to %s", utils.LogPath(iconPath))
		result.IconGenerated = true
	}

	bundlePath, err := staged.Commit(t)
	if err != nil {
		return i.fail(result, start, fatal(StageBundle, err))
	}
	result.Context = result.Context.WithBundlePath(bundlePath)

	if !result.IconGenerated {
		if err := i.icons.AssignGeneric(ctx, bundlePath, t); err != nil {
			t.V(2).Infof("Could not assign the generic icon: %v", err)
		}
	}

	i.registerDock(ctx, t, result, bundlePath)

	switch {
	case i.options.Force:
		result.Status = types.InstallStatusForcedInstalled
	case extracted.Skipped && bundleExisted:
		result.Status = types.InstallStatusRefreshed
	default:
		result.Status = types.InstallStatusInstalled
	}
	result.Duration = time.Since(start)
	return result, nil
}

// describe returns the descriptor known from the download link, or parses the archive filename
func (i *Installer) describe(acquired source.Result) (types.DistributionDescriptor, error) {
	if !acquired.Descriptor.IsZero() {
		return acquired.Descriptor, nil
	}
	return version.ParseArchiveNameFor(i.config.Tool, filepath.Base(acquired.Archive.Location))
}

func (i *Installer) checkRuntime(ctx context.Context, t *task.Task, result *types.InstallResult) {
	if i.checker == nil {
		t.V(2).Infof("Skipping Java check")
		return
	}

	status, err := i.checker.Check(ctx, t)
	if err == nil && status.Satisfied {
		result.JavaVersion = status.Version
		return
	}

	if err != nil {
		err = fmt.Errorf("java not found: %w", err)
	} else {
		result.JavaVersion = status.Version
		err = fmt.Errorf("java %s does not satisfy %s", status.Version, status.Constraint)
	}
	t.Warnf("%v, %s will not start until a JDK is installed", err, i.config.Bundle.Name)
	degrade(result, StageRuntime, err)

	if !i.config.Java.Remediate {
		return
	}
	if err := i.checker.Remediate(ctx, t); err != nil {
		t.Warnf("Could not install Java: %v", err)
		degrade(result, StageRuntime, fmt.Errorf("could not install java: %w", err))
	}
}

func (i *Installer) registerDock(ctx context.Context, t *task.Task, result *types.InstallResult, bundlePath string) {
	if i.options.SkipDock || i.config.SkipDock {
		t.V(2).Infof("Skipping dock registration")
		return
	}

	outcome, err := dock.Ensure(ctx, i.registrar, i.config.Bundle.Name, bundlePath, i.options.Force, t)
	if err != nil {
		t.Warnf("Could not add %s to the Dock: %v", i.config.Bundle.Name, err)
		degrade(result, StageDock, fmt.Errorf("could not add %s to the dock: %w", i.config.Bundle.Name, err))
		return
	}
	result.DockRegistered = outcome == dock.OutcomeRegistered
}

// DownloadOnly acquires the archive and moves it into the install root under its
// own filename, so a later install finds it. Nothing is extracted.
func (i *Installer) DownloadOnly(ctx context.Context, t *task.Task) (*types.InstallResult, error) {
	start := time.Now()
	result := &types.InstallResult{Context: types.ResolutionContext{InstallRoot: i.config.InstallRoot}}

	cleanup := NewCleanupManager(i.options.Debug, t)
	defer cleanup.Cleanup()

	acquired, err := i.acquirer.Acquire(ctx, t)
	if err != nil {
		return i.fail(result, start, fatal(StageSource, err))
	}
	cleanup.AddDirectory(acquired.TempDir)
	for _, w := range acquired.Warnings {
		degrade(result, StageSource, w)
	}

	archive := acquired.Archive
	if archive.Origin.IsDownload() {
		dest := filepath.Join(i.config.InstallRoot, filepath.Base(archive.Location))
		if err := os.MkdirAll(i.config.InstallRoot, 0755); err != nil {
			return i.fail(result, start, fatal(StageSource, fmt.Errorf("failed to create install root: %w", err)))
		}
		if err := utils.MoveFile(archive.Location, dest); err != nil {
			return i.fail(result, start, fatal(StageSource, fmt.Errorf("failed to move archive into %s: %w", i.config.InstallRoot, err)))
		}
		t.Infof("Saved %s", utils.LogPath(dest))
		archive.Location = dest
	}
	result.Context = result.Context.WithArchive(archive)
	if descriptor, err := i.describe(acquired); err == nil {
		result.Context = result.Context.WithDescriptor(descriptor)
	}

	result.Status = types.InstallStatusDownloaded
	result.Duration = time.Since(start)
	return result, nil
}

// Uninstall removes the bundle and the extraction it launches. Archives and the
// dock entry are left alone.
func (i *Installer) Uninstall(ctx context.Context, t *task.Task) (*types.InstallResult, error) {
	start := time.Now()
	result := &types.InstallResult{Context: types.ResolutionContext{InstallRoot: i.config.InstallRoot}}

	extraction := i.installedExtraction(t)
	if descriptor, err := version.ParseArchiveNameFor(i.config.Tool, extraction+version.ArchiveExtension); err == nil {
		result.Context = result.Context.WithDescriptor(descriptor)
	}

	removedBundle, err := i.bundle.Remove(t)
	if err != nil {
		return i.fail(result, start, fatal(StageBundle, err))
	}
	if removedBundle {
		result.Context = result.Context.WithBundlePath(i.bundle.Path())
	}

	removedExtraction := false
	if extraction != "" {
		removedExtraction, err = extract.Remove(i.config.InstallRoot, extraction, t)
		if err != nil {
			return i.fail(result, start, fatal(StageExtract, err))
		}
		if removedExtraction {
			result.Context = result.Context.WithExtractionPath(filepath.Join(i.config.InstallRoot, extraction))
		}
	}

	if !removedBundle && !removedExtraction {
		t.Infof("Nothing to uninstall")
		result.Warn(string(StageBundle), "nothing installed at %s", i.bundle.Path())
	}
	result.Status = types.InstallStatusUninstalled
	result.Duration = time.Since(start)
	return result, nil
}

// installedExtraction names the extraction directory of the installed bundle. The launcher's
// target is preferred when it lies in the install root, then a directory matching the
// manifest version, then the default archive's root directory.
func (i *Installer) installedExtraction(t *task.Task) string {
	if target, err := i.bundle.ExtractionTarget(); err == nil {
		if filepath.Dir(filepath.Clean(target)) == filepath.Clean(i.config.InstallRoot) {
			return filepath.Base(target)
		}
		t.V(2).Infof("Launcher points outside %s: %s", utils.LogPath(i.config.InstallRoot), target)
	}

	if manifest, err := i.bundle.Installed(); err == nil && manifest.Version != "" {
		if dir := i.findExtraction(manifest.Version); dir != "" {
			return dir
		}
	}

	descriptor, err := version.ParseArchiveNameFor(i.config.Tool, i.config.DefaultArchiveName())
	if err != nil {
		return ""
	}
	return descriptor.RootDirName
}

// findExtraction returns the first <tool>_<version>_PUBLIC* directory in the install root
func (i *Installer) findExtraction(v string) string {
	pattern := i.config.Tool + "_" + v + "_PUBLIC*"
	matches, err := doublestar.Glob(os.DirFS(i.config.InstallRoot), pattern)
	if err != nil {
		return ""
	}
	for _, match := range matches {
		if strings.HasPrefix(match, ".") {
			continue
		}
		if utils.DirExists(filepath.Join(i.config.InstallRoot, match)) {
			return match
		}
	}
	return ""
}

// Status reports what is installed without changing anything
func (i *Installer) Status(ctx context.Context, t *task.Task) types.StatusReport {
	report := types.StatusReport{
		BundlePath:       i.bundle.Path(),
		BundleStatus:     types.CheckStatusMissing,
		KnownVersion:     i.config.Fallback.Version,
		ExtractionStatus: types.CheckStatusMissing,
		DockStatus:       types.CheckStatusUnknown,
		JavaStatus:       types.CheckStatusUnknown,
	}

	if i.bundle.Exists() {
		manifest, err := i.bundle.Installed()
		switch {
		case err != nil:
			report.BundleStatus = types.CheckStatusError
			report.Error = err.Error()
		case version.IsNewer(i.config.Fallback.Version, manifest.Version):
			report.BundleStatus = types.CheckStatusOutdated
			report.InstalledVersion = manifest.Version
		default:
			report.BundleStatus = types.CheckStatusOK
			report.InstalledVersion = manifest.Version
		}
	}

	if dir := i.installedExtraction(t); dir != "" {
		report.ExtractionPath = filepath.Join(i.config.InstallRoot, dir)
		verified := verify.VerifyExtraction(report.ExtractionPath, i.config.Bundle.EntryPoint)
		report.ExtractionStatus = verified.Status
		report.ExtractionVersion = verified.Version
		if verified.Status == types.CheckStatusError && report.Error == "" {
			report.Error = verified.Error
		}
	}

	if _, unsupported := i.registrar.(dock.NoopRegistrar); !unsupported {
		registered, err := i.registrar.IsRegistered(ctx, i.config.Bundle.Name)
		switch {
		case err != nil:
			report.DockStatus = types.CheckStatusError
		case registered:
			report.DockStatus = types.CheckStatusOK
		default:
			report.DockStatus = types.CheckStatusMissing
		}
	}

	if i.checker != nil {
		status, err := i.checker.Check(ctx, t)
		switch {
		case err != nil:
			report.JavaStatus = types.CheckStatusMissing
		case status.Satisfied:
			report.JavaStatus = types.CheckStatusOK
			report.JavaVersion = status.Version
		default:
			report.JavaStatus = types.CheckStatusOutdated
			report.JavaVersion = status.Version
		}
	}
	return report
}
