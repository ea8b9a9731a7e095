package checksum

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// HashTypeSHA256 prefixes recorded digests
const HashTypeSHA256 = "sha256"

// FormatChecksum formats a checksum with its type prefix
func FormatChecksum(value, hashType string) string {
	return fmt.Sprintf("%s:%s", hashType, value)
}

// CalculateFileChecksum returns the hex sha256 of the file at filePath
func CalculateFileChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Digest returns the prefixed SHA-256 of the file at filePath, e.g. "sha256:ab12..."
func Digest(filePath string) (string, error) {
	value, err := CalculateFileChecksum(filePath)
	if err != nil {
		return "", err
	}
	return FormatChecksum(value, HashTypeSHA256), nil
}
