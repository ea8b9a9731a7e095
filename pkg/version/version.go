package version

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/flanksource/ghidra-install/pkg/types"
)

// DefaultTool is the archive prefix of the distribution
const DefaultTool = "ghidra"

// ArchiveExtension is the only distribution format published
const ArchiveExtension = ".zip"

// ErrUnrecognizedArchive is returned when a filename does not match <tool>_<version>_PUBLIC...zip
var ErrUnrecognizedArchive = errors.New("unrecognized archive name")

func archivePattern(tool string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(tool) + `_(\d+(?:\.\d+)*)_PUBLIC`)
}

// ParseArchiveName derives the version and root directory name from a ghidra archive filename
func ParseArchiveName(filename string) (types.DistributionDescriptor, error) {
	return ParseArchiveNameFor(DefaultTool, filename)
}

// ParseArchiveNameFor derives the descriptor for archives named <tool>_<version>_PUBLIC...zip.
// Only the base name of filename is considered.
func ParseArchiveNameFor(tool, filename string) (types.DistributionDescriptor, error) {
	base := filepath.Base(strings.TrimSpace(filename))
	if !strings.HasSuffix(strings.ToLower(base), ArchiveExtension) {
		return types.DistributionDescriptor{}, fmt.Errorf("%w: %q does not end in %s", ErrUnrecognizedArchive, base, ArchiveExtension)
	}

	matches := archivePattern(tool).FindStringSubmatch(base)
	if len(matches) < 2 {
		return types.DistributionDescriptor{}, fmt.Errorf("%w: %q does not match %s_<version>_PUBLIC", ErrUnrecognizedArchive, base, tool)
	}

	return types.DistributionDescriptor{
		Version:     matches[1],
		RootDirName: base[:len(base)-len(ArchiveExtension)],
	}, nil
}

// IsArchiveName returns true if filename parses as a distribution archive for tool
func IsArchiveName(tool, filename string) bool {
	_, err := ParseArchiveNameFor(tool, filename)
	return err == nil
}

// Normalize removes common prefixes from version strings and truncates them to
// major.minor.patch so they parse as semver (11.0.2.1 -> 11.0.2, 1.8.0_292 -> 1.8.0)
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return version
	}

	version = strings.TrimPrefix(version, "version-")
	version = strings.TrimPrefix(version, "release-")
	version = strings.TrimPrefix(version, "v")
	version = strings.TrimPrefix(version, "V")

	if idx := strings.IndexAny(version, "_+ "); idx > 0 {
		version = version[:idx]
	}

	// semver accepts at most major.minor.patch
	if parts := strings.Split(version, "."); len(parts) > 3 {
		version = strings.Join(parts[:3], ".")
	}

	return version
}

// Compare returns -1, 0 or 1 comparing two versions; unparseable versions compare as strings
func Compare(a, b string) int {
	va, errA := semver.NewVersion(Normalize(a))
	vb, errB := semver.NewVersion(Normalize(b))
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

// IsNewer returns true if candidate is strictly newer than installed
func IsNewer(candidate, installed string) bool {
	return Compare(candidate, installed) > 0
}

// ExtractFromOutput extracts a version from command output using a regex with one capture group.
// If no pattern is provided a generic dotted version pattern is used.
func ExtractFromOutput(output, pattern string) (string, error) {
	if pattern == "" {
		pattern = `v?(\d+(?:\.\d+)*)`
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid version pattern: %w", err)
	}

	matches := re.FindStringSubmatch(output)
	if len(matches) < 2 {
		return "", fmt.Errorf("version not found in output")
	}

	return strings.TrimSpace(matches[1]), nil
}
