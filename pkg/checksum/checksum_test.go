package checksum

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ghidra_11.3.1_PUBLIC_20250219.zip")
	require.NoError(t, os.WriteFile(path, []byte("ghidra"), 0644))

	value, err := CalculateFileChecksum(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256([]byte("ghidra"))), value)

	_, err = CalculateFileChecksum(filepath.Join(t.TempDir(), "missing.zip"))
	assert.ErrorContains(t, err, "failed to open file")
}

func TestDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, []byte("ghidra"), 0644))

	digest, err := Digest(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("sha256:%x", sha256.Sum256([]byte("ghidra"))), digest)

	_, err = Digest(filepath.Join(t.TempDir(), "missing.zip"))
	assert.Error(t, err)
}
