package icon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/system"
	"github.com/flanksource/ghidra-install/pkg/utils"
)

// DefaultSizes are the iconset sizes, each also rendered at @2x
var DefaultSizes = []int{16, 32, 128, 256, 512}

// IconsetConverter builds an .icns with sips and iconutil
type IconsetConverter struct {
	Runner  system.Runner
	Sources []string
	Sizes   []int
}

// IconsetEntry is one image of an .iconset directory
type IconsetEntry struct {
	Filename string
	Pixels   int
}

// IconsetEntries lists the iconset images for sizes: icon_NxN.png and icon_NxN@2x.png
func IconsetEntries(sizes []int) []IconsetEntry {
	var entries []IconsetEntry
	for _, size := range sizes {
		entries = append(entries,
			IconsetEntry{Filename: fmt.Sprintf("icon_%dx%d.png", size, size), Pixels: size},
			IconsetEntry{Filename: fmt.Sprintf("icon_%dx%d@2x.png", size, size), Pixels: size * 2},
		)
	}
	return entries
}

func (c *IconsetConverter) Generate(ctx context.Context, extractionPath, resourcesDir, name string, t *task.Task) (string, error) {
	src, err := FindSource(extractionPath, c.Sources)
	if err != nil {
		return "", err
	}
	sizes := c.Sizes
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}

	workDir, err := os.MkdirTemp("", "ghidra-iconset-")
	if err != nil {
		return "", fmt.Errorf("failed to create iconset directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	iconset := filepath.Join(workDir, name+".iconset")
	if err := os.MkdirAll(iconset, 0755); err != nil {
		return "", fmt.Errorf("failed to create iconset directory: %w", err)
	}

	t.V(2).Infof("Converting %s to %s.icns", utils.LogPath(src), name)
	converted := 0
	for _, entry := range IconsetEntries(sizes) {
		px := fmt.Sprint(entry.Pixels)
		out := filepath.Join(iconset, entry.Filename)
		if _, err := c.Runner.Run(ctx, "sips", "-s", "format", "png", "-z", px, px, src, "--out", out); err != nil {
			t.V(3).Infof("Skipping %s: %v", entry.Filename, err)
			continue
		}
		converted++
	}
	if converted == 0 {
		return "", fmt.Errorf("sips could not convert %s at any size", utils.LogPath(src))
	}

	if err := os.MkdirAll(resourcesDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", resourcesDir, err)
	}
	dest := filepath.Join(resourcesDir, name+".icns")
	if _, err := c.Runner.Run(ctx, "iconutil", "-c", "icns", iconset, "-o", dest); err != nil {
		return "", fmt.Errorf("iconutil failed: %w", err)
	}
	t.V(3).Infof("Generated %s from %d images", filepath.Base(dest), converted)
	return dest, nil
}

func (c *IconsetConverter) AssignGeneric(ctx context.Context, bundlePath string, t *task.Task) error {
	script := []string{
		"-e", `use framework "AppKit"`,
		"-e", fmt.Sprintf(`set img to current application's NSImage's alloc()'s initWithContentsOfFile:%q`, genericAppIcon),
		"-e", fmt.Sprintf(`current application's NSWorkspace's sharedWorkspace()'s setIcon:img forFile:%q options:0`, bundlePath),
	}
	if _, err := c.Runner.Run(ctx, "osascript", script...); err != nil {
		return fmt.Errorf("failed to assign generic icon: %w", err)
	}
	t.V(3).Infof("Assigned generic application icon to %s", utils.LogPath(bundlePath))
	return nil
}
