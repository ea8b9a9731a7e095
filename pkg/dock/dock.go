package dock

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/flanksource/clicky/task"
	"howett.net/plist"

	"github.com/flanksource/ghidra-install/pkg/system"
)

const dockDomain = "com.apple.dock"

// Registrar manages the desktop shell's pinned application list
type Registrar interface {
	// IsRegistered reports whether the pinned list mentions displayName
	IsRegistered(ctx context.Context, displayName string) (bool, error)
	// Register pins bundlePath and restarts the shell so the change shows
	Register(ctx context.Context, bundlePath string, t *task.Task) error
}

// Outcome of Ensure
type Outcome string

const (
	OutcomeRegistered        Outcome = "registered"
	OutcomeAlreadyRegistered Outcome = "already-registered"
	OutcomeUnsupported       Outcome = "unsupported"
)

// Ensure registers bundlePath unless displayName is already pinned. force skips the check.
func Ensure(ctx context.Context, r Registrar, displayName, bundlePath string, force bool, t *task.Task) (Outcome, error) {
	if _, ok := r.(NoopRegistrar); ok {
		return OutcomeUnsupported, nil
	}
	if !force {
		registered, err := r.IsRegistered(ctx, displayName)
		if err != nil {
			return "", err
		}
		if registered {
			t.V(2).Infof("%s is already in the Dock", displayName)
			return OutcomeAlreadyRegistered, nil
		}
	}
	if err := r.Register(ctx, bundlePath, t); err != nil {
		return "", err
	}
	return OutcomeRegistered, nil
}

// NewRegistrar returns the registrar for goos
func NewRegistrar(goos string, runner system.Runner) Registrar {
	if goos == "darwin" {
		return &DefaultsRegistrar{Runner: runner}
	}
	return NoopRegistrar{}
}

// DefaultsRegistrar edits the macOS Dock through `defaults` and restarts it with `killall Dock`
type DefaultsRegistrar struct {
	Runner system.Runner
}

func (d *DefaultsRegistrar) IsRegistered(ctx context.Context, displayName string) (bool, error) {
	output, err := d.Runner.Run(ctx, "defaults", "read", dockDomain, "persistent-apps")
	if err != nil {
		return false, fmt.Errorf("failed to read dock items: %w", err)
	}
	return strings.Contains(output, displayName), nil
}

func (d *DefaultsRegistrar) Register(ctx context.Context, bundlePath string, t *task.Task) error {
	tile, err := TileXML(bundlePath)
	if err != nil {
		return err
	}
	if _, err := d.Runner.Run(ctx, "defaults", "write", dockDomain, "persistent-apps", "-array-add", tile); err != nil {
		return fmt.Errorf("failed to add %s to the dock: %w", bundlePath, err)
	}
	if _, err := d.Runner.Run(ctx, "killall", "Dock"); err != nil {
		return fmt.Errorf("added to the dock but failed to restart it: %w", err)
	}
	t.Infof("Added %s to the Dock", bundlePath)
	return nil
}

// NoopRegistrar is used where there is no dock to pin to
type NoopRegistrar struct{}

func (NoopRegistrar) IsRegistered(context.Context, string) (bool, error) { return false, nil }

func (NoopRegistrar) Register(context.Context, string, *task.Task) error { return nil }

type tile struct {
	TileData tileData `plist:"tile-data"`
}

type tileData struct {
	FileData fileData `plist:"file-data"`
}

type fileData struct {
	URLString     string `plist:"_CFURLString"`
	URLStringType int    `plist:"_CFURLStringType"`
}

// TileXML renders the persistent-apps entry for bundlePath as the bare <dict> that
// `defaults write -array-add` expects
func TileXML(bundlePath string) (string, error) {
	data, err := plist.MarshalIndent(tile{
		TileData: tileData{FileData: fileData{URLString: bundlePath}},
	}, plist.XMLFormat, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render dock tile: %w", err)
	}

	start := bytes.Index(data, []byte("<dict>"))
	end := bytes.LastIndex(data, []byte("</dict>"))
	if start < 0 || end < start {
		return "", fmt.Errorf("unexpected dock tile plist: %s", data)
	}
	return string(data[start : end+len("</dict>")]), nil
}
