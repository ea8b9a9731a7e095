package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/clicky/task"
)

// RelativePath converts an absolute path to a path relative to the working directory,
// or to the home directory (as ~/...) when that is shorter
func RelativePath(absPath string) string {
	if absPath == "" {
		return ""
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if rel, err := filepath.Rel(home, absPath); err == nil && !strings.HasPrefix(rel, "..") {
			absPath = filepath.Join("~", rel)
		}
	}

	cwd, err := os.Getwd()
	if err != nil || strings.HasPrefix(absPath, "~") {
		return absPath
	}

	relPath, err := filepath.Rel(cwd, absPath)
	if err != nil || len(relPath) > len(absPath) {
		return absPath
	}

	return relPath
}

// LogPath returns a clean path for logging
func LogPath(path string) string {
	if path == "" {
		return ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.Base(path)
	}

	return RelativePath(absPath)
}

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// ShortenURL removes the scheme and collapses long paths to domain/.../filename
func ShortenURL(url string) string {
	if url == "" {
		return ""
	}

	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	if len(url) > 60 {
		parts := strings.Split(url, "/")
		if len(parts) > 2 {
			return fmt.Sprintf("%s/.../%s", parts[0], parts[len(parts)-1])
		}
	}

	return url
}

// LogDownloadStart logs the start of a download
func LogDownloadStart(t *task.Task, url, dest string) {
	if t == nil {
		return
	}

	t.Infof("Downloading from %s", ShortenURL(url))
	t.SetDescription(fmt.Sprintf("Downloading %s", filepath.Base(dest)))
}

// LogExtraction logs the entries written from archivePath into extractDir
func LogExtraction(t *task.Task, archivePath, extractDir string, fileCount int) {
	if t == nil {
		return
	}
	t.Infof("Extracted %s (%d entries) to %s", filepath.Base(archivePath), fileCount, LogPath(extractDir))
}
