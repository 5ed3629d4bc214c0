package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// PartSuffix ends the name of every temporary file that content is written
// to before it is moved into place.
const PartSuffix = ".part"

// FileExists returns true if a file or directory with the given path exists.
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// IsDir returns true if a directory with the given path exists.
func IsDir(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.IsDir()
}

// IsRegular returns true if a regular file with the given path exists.
func IsRegular(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.Mode().IsRegular()
}

// IsNonEmpty returns true if a regular file with the given path exists and
// contains at least one byte.
func IsNonEmpty(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// WriteAtomic creates dst by way of a temporary sibling: fill is handed the
// open temporary file, and only if it succeeds is the file flushed and
// renamed to dst. On any failure the temporary file is removed, so dst is
// either absent, left as it was, or complete.
//
// The temporary file gets a fresh hidden name (".<base>.<random>.part"), so
// it never coincides with another file in the directory.
//
// Errors returned by fill are passed through unchanged.
func WriteAtomic(dst string, fill func(f *os.File) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*"+PartSuffix)
	if err != nil {
		return err
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			f.Close()
			if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
				log.WithError(rmErr).Warnf("failed to remove temporary file: %s", tmp)
			}
		}
	}()

	if err := f.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", tmp, err)
	}

	if err := fill(f); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}

	log.Debugf("moving: %s --> %s", tmp, dst)
	if err := os.Rename(tmp, dst); err != nil {
		return err
	}

	return nil
}
