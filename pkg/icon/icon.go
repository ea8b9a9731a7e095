package icon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/system"
	"github.com/flanksource/ghidra-install/pkg/utils"
)

// ErrNoIconSource is returned when the extraction ships nothing convertible
var ErrNoIconSource = errors.New("no icon source found")

// genericAppIcon is assigned when conversion produced nothing
const genericAppIcon = "/System/Library/CoreServices/CoreTypes.bundle/Contents/Resources/GenericApplicationIcon.icns"

// Converter produces the bundle icon. Every method is best-effort: callers log errors and carry on.
type Converter interface {
	// Generate writes <name>.<ext> into resourcesDir from an image found under extractionPath
	// and returns the file written
	Generate(ctx context.Context, extractionPath, resourcesDir, name string, t *task.Task) (string, error)
	// AssignGeneric gives bundlePath the system's generic application icon
	AssignGeneric(ctx context.Context, bundlePath string, t *task.Task) error
}

// NewConverter returns the converter for goos
func NewConverter(goos string, runner system.Runner, sources []string, sizes []int) Converter {
	if goos == "darwin" {
		return &IconsetConverter{Runner: runner, Sources: sources, Sizes: sizes}
	}
	return &PNGConverter{Sources: sources}
}

// FindSource returns the first file under root matching one of patterns, tried in order.
// Matches of a single pattern are sorted so the choice is stable.
func FindSource(root string, patterns []string, extensions ...string) (string, error) {
	fsys := os.DirFS(root)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return "", fmt.Errorf("invalid icon pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if len(extensions) > 0 && !hasExtension(match, extensions) {
				continue
			}
			return filepath.Join(root, match), nil
		}
	}
	return "", fmt.Errorf("%w under %s (tried %v)", ErrNoIconSource, utils.LogPath(root), patterns)
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// PNGConverter copies a PNG into the resources directory; freedesktop launchers take PNGs directly
type PNGConverter struct {
	Sources []string
}

func (p *PNGConverter) Generate(ctx context.Context, extractionPath, resourcesDir, name string, t *task.Task) (string, error) {
	src, err := FindSource(extractionPath, p.Sources, ".png")
	if err != nil {
		return "", err
	}
	dest := filepath.Join(resourcesDir, name+".png")
	if err := os.MkdirAll(resourcesDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", resourcesDir, err)
	}
	if err := utils.CopyFile(src, dest); err != nil {
		return "", fmt.Errorf("failed to copy icon: %w", err)
	}
	t.V(3).Infof("Copied icon %s", utils.LogPath(src))
	return dest, nil
}

func (p *PNGConverter) AssignGeneric(ctx context.Context, bundlePath string, t *task.Task) error {
	return nil
}
