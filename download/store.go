package download

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ccollins476ad/imker/fileutil"
	log "github.com/sirupsen/logrus"
)

// Store maps remote titles to files in the output directory and writes them
// there. It never creates the directory itself.
type Store struct {
	destDir string // constant
}

func NewStore(destDir string) *Store {
	return &Store{
		destDir: destDir,
	}
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.destDir
}

// Target returns the local path that the given title is saved to. It fails
// for titles that do not leave a usable file name.
func (s *Store) Target(title string) (string, error) {
	switch LocalName(title) {
	case "", ".", "..":
		return "", fmt.Errorf("title %q does not name a file", title)
	}
	return LocalPath(s.destDir, title), nil
}

// Has returns true if a non-empty file is already stored at path. An empty
// file at path does not count and gets replaced.
func (s *Store) Has(path string) bool {
	if fileutil.IsNonEmpty(path) {
		log.Debugf("file already exists: %s", path)
		return true
	}
	if fileutil.FileExists(path) {
		log.Debugf("replacing empty or irregular file: %s", path)
	}
	return false
}

// Save stores a file at path via a temporary ".part" sibling. Errors
// returned by fill are passed through; failures to create, flush, or move
// the file are reported as WriteErrors.
func (s *Store) Save(path string, fill func(f *os.File) error) error {
	var fillErr error
	err := fileutil.WriteAtomic(path, func(f *os.File) error {
		fillErr = fill(f)
		return fillErr
	})
	if err != nil && err != fillErr {
		return &WriteError{Path: path, Err: err}
	}
	return err
}

// SaveFile atomically writes b to the named file in the output directory.
func (s *Store) SaveFile(name string, b []byte) error {
	destPath := filepath.Join(s.destDir, name)
	log.Infof("writing %s", destPath)

	return s.Save(destPath, func(f *os.File) error {
		if _, err := f.Write(b); err != nil {
			return &WriteError{Path: destPath, Err: err}
		}
		return nil
	})
}
