package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yeorinhieut/novel-dl/internal/ui"
)

// CleanupPartial removes files left behind by an interrupted write.
func CleanupPartial(dir string, log *ui.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, PartialSuffix) {
			continue
		}

		full := filepath.Join(dir, name)
		if err := os.Remove(full); err != nil {
			log.Errorf("Error cleaning up %s: %v", full, err)
		} else {
			log.Infof("Removed %s", full)
		}
	}
}

// RemoveIfEmpty deletes dir when nothing was written into it.
func RemoveIfEmpty(dir string, log *ui.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			log.Infof("Removed empty output folder: %s", dir)
		}
	}
}
