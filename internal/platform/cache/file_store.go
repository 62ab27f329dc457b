package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"dividend_backend/internal/shared/fsutil"
)

// FileStore keeps one JSON file per key under dir. Writes are atomic so a
// concurrent reader sees either the old or the new entry.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, fsutil.SafeName(key)+".json")
}

// Read returns the file content for key.
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Write replaces the file for key.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(s.path(key), data, 0o644)
}
