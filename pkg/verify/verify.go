package verify

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/ghidra-install/pkg/types"
)

// PropertiesFile holds the release metadata inside an extraction
var PropertiesFile = filepath.Join("Ghidra", "application.properties")

// ExtractionResult represents the result of verifying an extracted distribution
type ExtractionResult struct {
	Status  types.CheckStatus
	Version string
	Error   string
}

// VerifyExtraction checks that the extraction at dir holds an executable entryPoint and
// reads the release version from its application.properties when present
func VerifyExtraction(dir, entryPoint string) ExtractionResult {
	result := ExtractionResult{Status: types.CheckStatusMissing}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		result.Error = "extraction not found"
		return result
	}

	info, err := os.Stat(filepath.Join(dir, entryPoint))
	switch {
	case os.IsNotExist(err):
		result.Status = types.CheckStatusError
		result.Error = fmt.Sprintf("%s not found", entryPoint)
		return result
	case err != nil:
		result.Status = types.CheckStatusError
		result.Error = err.Error()
		return result
	case info.Mode().Perm()&0111 == 0:
		result.Status = types.CheckStatusError
		result.Error = fmt.Sprintf("%s is not executable", entryPoint)
		return result
	}

	result.Status = types.CheckStatusOK
	result.Version = ReadApplicationVersion(filepath.Join(dir, PropertiesFile))
	return result
}

// ReadApplicationVersion returns the application.version property, or "" if the file
// cannot be read
func ReadApplicationVersion(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if ok && strings.TrimSpace(key) == "application.version" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
