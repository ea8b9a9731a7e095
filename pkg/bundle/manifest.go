package bundle

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"howett.net/plist"
)

// Manifest is the application metadata written into the bundle
type Manifest struct {
	Name        string `plist:"CFBundleName"`
	DisplayName string `plist:"CFBundleDisplayName"`
	Identifier  string `plist:"CFBundleIdentifier"`
	// ShortVersion and Version both carry the distribution version
	ShortVersion string `plist:"CFBundleShortVersionString"`
	Version      string `plist:"CFBundleVersion"`
	IconFile     string `plist:"CFBundleIconFile"`
	Executable   string `plist:"CFBundleExecutable"`
	PackageType  string `plist:"CFBundlePackageType"`
	// HighResolution avoids blurry rendering of the Swing UI on retina displays
	HighResolution bool `plist:"NSHighResolutionCapable"`
}

// MarshalPlist renders m as an XML property list
func (m Manifest) MarshalPlist() ([]byte, error) {
	data, err := plist.MarshalIndent(m, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to render Info.plist: %w", err)
	}
	return data, nil
}

// ReadPlistManifest parses an Info.plist
func ReadPlistManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if _, err := plist.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

const (
	desktopVersionKey    = "X-GhidraInstall-Version"
	desktopIdentifierKey = "X-GhidraInstall-Identifier"
)

// ReadDesktopManifest reads back the fields written into a desktop entry
func ReadDesktopManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "Name":
			m.Name, m.DisplayName = value, value
		case desktopVersionKey:
			m.Version, m.ShortVersion = value, value
		case desktopIdentifierKey:
			m.Identifier = value
		case "Icon":
			m.IconFile = value
		case "Exec":
			m.Executable = desktopUnquote(strings.TrimSuffix(value, " %F"))
		}
	}
	if err := scanner.Err(); err != nil {
		return m, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if m.Version == "" {
		return m, fmt.Errorf("%s has no %s entry", path, desktopVersionKey)
	}
	return m, nil
}
