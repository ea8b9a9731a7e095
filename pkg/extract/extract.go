package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/commons/files"
	"github.com/samber/lo"

	"github.com/flanksource/ghidra-install/pkg/utils"
)

// ErrRootMismatch is returned when the archive does not contain the expected top-level directory
var ErrRootMismatch = errors.New("archive root directory mismatch")

const stagingPrefix = ".ghidra-install-extract-"

// Result describes the installed extraction
type Result struct {
	Path    string
	Skipped bool
	Files   int
}

// Ensure makes sure <installRoot>/<rootDirName> exists. An existing directory is kept
// as is unless force is set. The archive is unpacked into a staging directory inside
// installRoot and its root directory renamed into place, so a failed or mismatched
// extraction leaves installRoot untouched.
func Ensure(archivePath, installRoot, rootDirName string, force bool, t *task.Task) (Result, error) {
	if rootDirName == "" || strings.ContainsAny(rootDirName, `/\`) || rootDirName == "." || rootDirName == ".." {
		return Result{}, fmt.Errorf("invalid extraction directory name %q", rootDirName)
	}
	target := filepath.Join(installRoot, rootDirName)

	if utils.DirExists(target) && !force {
		t.Infof("%s already extracted, skipping", utils.LogPath(target))
		return Result{Path: target, Skipped: true}, nil
	}

	if err := os.MkdirAll(installRoot, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create install root %s: %w", installRoot, err)
	}
	staging, err := os.MkdirTemp(installRoot, stagingPrefix)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	t.SetDescription(fmt.Sprintf("Extracting %s", filepath.Base(archivePath)))
	archive, err := files.Unarchive(archivePath, staging)
	if err != nil {
		return Result{}, fmt.Errorf("failed to extract %s: %w", filepath.Base(archivePath), err)
	}
	t.V(3).Infof("%s", archive)

	extracted := filepath.Join(staging, rootDirName)
	if !utils.DirExists(extracted) {
		return Result{}, fmt.Errorf("%w: expected %s/ in %s, found %v",
			ErrRootMismatch, rootDirName, filepath.Base(archivePath), topLevelEntries(staging))
	}
	count := lo.CountBy(archive.Files, func(name string) bool {
		return strings.HasPrefix(filepath.ToSlash(name), rootDirName+"/")
	})
	if count == 0 {
		return Result{}, fmt.Errorf("extraction verification failed: %s is empty", rootDirName)
	}

	if utils.DirExists(target) {
		t.Infof("Removing existing %s", utils.LogPath(target))
		if err := os.RemoveAll(target); err != nil {
			return Result{}, fmt.Errorf("failed to remove existing extraction %s: %w", target, err)
		}
	}
	if err := os.Rename(extracted, target); err != nil {
		return Result{}, fmt.Errorf("failed to move extraction into place: %w", err)
	}

	utils.LogExtraction(t, archivePath, target, count)
	return Result{Path: target, Files: count}, nil
}

// Remove deletes <installRoot>/<rootDirName>; it returns false when nothing was there
func Remove(installRoot, rootDirName string, t *task.Task) (bool, error) {
	if rootDirName == "" {
		return false, fmt.Errorf("invalid extraction directory name %q", rootDirName)
	}
	target := filepath.Join(installRoot, rootDirName)
	if !utils.DirExists(target) {
		return false, nil
	}
	if err := os.RemoveAll(target); err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", target, err)
	}
	t.Infof("Removed %s", utils.LogPath(target))
	return true, nil
}

func topLevelEntries(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
