package installer

import (
	"os"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/utils"
)

// CleanupManager removes downloaded archives once the install is done, unless debugging
type CleanupManager struct {
	debug       bool
	directories []string
	task        *task.Task
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(debug bool, t *task.Task) *CleanupManager {
	return &CleanupManager{
		debug: debug,
		task:  t,
	}
}

// AddDirectory adds a directory to be cleaned up
func (cm *CleanupManager) AddDirectory(dirpath string) {
	if dirpath != "" {
		cm.directories = append(cm.directories, dirpath)
	}
}

// Cleanup performs the actual cleanup
func (cm *CleanupManager) Cleanup() {
	if cm.debug {
		for _, path := range cm.directories {
			cm.task.Debugf("Keeping temporary files for debugging: %s", utils.LogPath(path))
		}
		return
	}

	for _, dir := range cm.directories {
		if err := os.RemoveAll(dir); err != nil {
			cm.task.V(4).Infof("Failed to clean up directory %s: %v", utils.LogPath(dir), err)
		}
	}
	cm.directories = nil
}
