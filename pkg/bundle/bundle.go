package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/types"
	"github.com/flanksource/ghidra-install/pkg/utils"
)

const stagingSuffix = ".staging"

// Layout places the bundle parts. Root is removed and recreated as a unit;
// the other paths are relative to it.
type Layout struct {
	GOOS         string
	Root         string
	ManifestPath string
	LauncherPath string
	ResourcesDir string
}

// NewLayout returns the layout for goos: Name.app on darwin, a directory holding a
// desktop entry, the launcher and the icon everywhere else
func NewLayout(goos, appsDir string, cfg types.BundleConfig) Layout {
	if goos == "darwin" {
		return Layout{
			GOOS:         goos,
			Root:         filepath.Join(appsDir, cfg.Name+".app"),
			ManifestPath: filepath.Join("Contents", "Info.plist"),
			LauncherPath: filepath.Join("Contents", "MacOS", cfg.Launcher),
			ResourcesDir: filepath.Join("Contents", "Resources"),
		}
	}
	slug := strings.ToLower(strings.ReplaceAll(cfg.Name, " ", "-"))
	return Layout{
		GOOS:         goos,
		Root:         filepath.Join(appsDir, slug),
		ManifestPath: slug + ".desktop",
		LauncherPath: cfg.Launcher,
		ResourcesDir: ".",
	}
}

func (l Layout) in(root, rel string) string {
	return filepath.Join(root, rel)
}

// Materializer writes the application bundle
type Materializer struct {
	Layout Layout
	Config types.BundleConfig
}

// NewFor creates a materializer for goos
func NewFor(goos, appsDir string, cfg types.BundleConfig) *Materializer {
	return &Materializer{Layout: NewLayout(goos, appsDir, cfg), Config: cfg}
}

// Path is the fixed location of the bundle
func (m *Materializer) Path() string {
	return m.Layout.Root
}

// Manifest returns the metadata for version
func (m *Materializer) Manifest(version string) Manifest {
	return Manifest{
		Name:           m.Config.Name,
		DisplayName:    m.Config.Name,
		Identifier:     m.Config.Identifier,
		ShortVersion:   version,
		Version:        version,
		IconFile:       m.Config.Icon,
		Executable:     filepath.Base(m.Layout.LauncherPath),
		PackageType:    "APPL",
		HighResolution: true,
	}
}

// Staged is a bundle written next to its final location and not yet visible
type Staged struct {
	Dir          string
	ResourcesDir string
	manifest     Manifest
	materializer *Materializer
}

// Stage writes the bundle directories, manifest and launcher into <bundle>.staging.
// Every error here is fatal to the install.
func (m *Materializer) Stage(descriptor types.DistributionDescriptor, extractionPath string, t *task.Task) (*Staged, error) {
	if descriptor.Version == "" || descriptor.RootDirName == "" {
		return nil, fmt.Errorf("cannot build a bundle for an unnamed distribution %q", descriptor)
	}

	staging := m.Layout.Root + stagingSuffix
	if err := os.RemoveAll(staging); err != nil {
		return nil, fmt.Errorf("failed to clear staging directory %s: %w", staging, err)
	}

	staged := &Staged{
		Dir:          staging,
		ResourcesDir: m.Layout.in(staging, m.Layout.ResourcesDir),
		manifest:     m.Manifest(descriptor.Version),
		materializer: m,
	}
	launcherPath := m.Layout.in(staging, m.Layout.LauncherPath)
	manifestPath := m.Layout.in(staging, m.Layout.ManifestPath)

	for _, dir := range []string{filepath.Dir(launcherPath), staged.ResourcesDir, filepath.Dir(manifestPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			staged.Discard()
			return nil, fmt.Errorf("failed to create bundle directory %s: %w", dir, err)
		}
	}

	launcher, err := RenderLauncher(m.Config.Name, descriptor.Version, extractionPath, m.Config.EntryPoint)
	if err != nil {
		staged.Discard()
		return nil, err
	}
	if err := os.WriteFile(launcherPath, []byte(launcher), 0755); err != nil {
		staged.Discard()
		return nil, fmt.Errorf("failed to write launcher: %w", err)
	}
	// WriteFile does not change the mode of an existing file, and the umask may strip bits
	if err := os.Chmod(launcherPath, 0755); err != nil {
		staged.Discard()
		return nil, fmt.Errorf("failed to mark launcher executable: %w", err)
	}

	if err := m.writeManifest(staged.manifest, manifestPath); err != nil {
		staged.Discard()
		return nil, err
	}

	t.V(2).Infof("Staged %s %s in %s", m.Config.Name, descriptor.Version, utils.LogPath(staging))
	return staged, nil
}

func (m *Materializer) writeManifest(manifest Manifest, path string) error {
	var data []byte
	var err error
	if m.Layout.GOOS == "darwin" {
		data, err = manifest.MarshalPlist()
	} else {
		var entry string
		entry, err = RenderDesktopEntry(manifest,
			m.Layout.in(m.Layout.Root, m.Layout.LauncherPath),
			m.Layout.in(m.Layout.in(m.Layout.Root, m.Layout.ResourcesDir), m.Config.Icon+".png"))
		data = []byte(entry)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Commit replaces the bundle at the fixed path with the staged one. Failing to remove
// the previous bundle is only logged; the rename that follows decides success.
func (s *Staged) Commit(t *task.Task) (string, error) {
	root := s.materializer.Layout.Root

	if _, err := os.Lstat(root); err == nil {
		if err := os.RemoveAll(root); err != nil {
			t.Warnf("Failed to remove existing bundle %s: %v", utils.LogPath(root), err)
		} else {
			t.V(2).Infof("Removed existing bundle %s", utils.LogPath(root))
		}
	} else {
		t.V(2).Infof("No existing bundle at %s", utils.LogPath(root))
	}

	if err := os.Rename(s.Dir, root); err != nil {
		s.Discard()
		return "", fmt.Errorf("failed to move bundle into place at %s: %w", root, err)
	}
	t.Infof("Created %s", utils.LogPath(root))
	return root, nil
}

// Discard removes the staging directory
func (s *Staged) Discard() {
	_ = os.RemoveAll(s.Dir)
}

// Exists reports whether a bundle is present at the fixed path
func (m *Materializer) Exists() bool {
	return utils.DirExists(m.Layout.Root)
}

// Remove deletes the bundle; it returns false when there was none
func (m *Materializer) Remove(t *task.Task) (bool, error) {
	if !m.Exists() {
		return false, nil
	}
	if err := os.RemoveAll(m.Layout.Root); err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", m.Layout.Root, err)
	}
	_ = os.RemoveAll(m.Layout.Root + stagingSuffix)
	t.Infof("Removed %s", utils.LogPath(m.Layout.Root))
	return true, nil
}

// Installed reads the manifest of the bundle at the fixed path
func (m *Materializer) Installed() (Manifest, error) {
	path := m.Layout.in(m.Layout.Root, m.Layout.ManifestPath)
	if m.Layout.GOOS == "darwin" {
		return ReadPlistManifest(path)
	}
	return ReadDesktopManifest(path)
}

// LauncherPath is the launcher inside the committed bundle
func (m *Materializer) LauncherPath() string {
	return m.Layout.in(m.Layout.Root, m.Layout.LauncherPath)
}

// ExtractionTarget reads the extraction directory the installed launcher changes into
func (m *Materializer) ExtractionTarget() (string, error) {
	data, err := os.ReadFile(m.LauncherPath())
	if err != nil {
		return "", err
	}
	return ReadLauncherTarget(string(data))
}

// ReadLauncherTarget returns the directory named by the launcher's cd line
func ReadLauncherTarget(script string) (string, error) {
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "cd ") || !strings.HasSuffix(line, "|| exit 1") {
			continue
		}
		target := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "cd "), "|| exit 1"))
		return shellUnquote(target), nil
	}
	return "", fmt.Errorf("launcher does not change into an extraction directory")
}
