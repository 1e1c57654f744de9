package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileStore persists each collection as a <name>.json file in a data
// directory. This is the default backend.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *FileStore) Ensure(name string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrap(err, "create data directory")
	}
	p := f.path(name)
	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "stat collection file")
	}
	if err := os.WriteFile(p, []byte("[]"), 0o644); err != nil {
		return errors.Wrap(err, "create collection file")
	}
	return nil
}

func (f *FileStore) Read(name string) ([]byte, error) {
	b, err := os.ReadFile(f.path(name))
	if err != nil {
		return nil, errors.Wrap(err, "read collection file")
	}
	return b, nil
}

// Write rewrites the collection file in place. No temp file and rename, so a
// crash mid-write can leave the file truncated.
func (f *FileStore) Write(name string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrap(err, "create data directory")
	}
	if err := os.WriteFile(f.path(name), data, 0o644); err != nil {
		return errors.Wrap(err, "write collection file")
	}
	return nil
}
