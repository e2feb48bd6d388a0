package transcode

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ScratchPath returns a collision-resistant scratch file path in dir.
// An empty dir means os.TempDir().
func ScratchPath(dir, prefix, ext string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	if prefix == "" {
		prefix = "barksync"
	}
	return filepath.Join(dir, prefix+"-"+uuid.NewString()+ext)
}

// RemoveScratch deletes path, treating a missing file as success.
func RemoveScratch(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
