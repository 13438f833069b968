// Package blob stores uploaded images on local disk under opaque names.
// Callers keep the returned key in the record; the original filename is never
// used as a path component.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"societyhub.org/internal/society"
)

var allowedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Store writes uploads to a single directory.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Save streams the upload to disk and returns the opaque key. The original
// name contributes only its extension, which must be an image type.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExts[ext]; !ok {
		return "", fmt.Errorf("%w: file type %q is not allowed", society.ErrInvalidInput, ext)
	}
	key := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", err
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	if n > s.maxSize {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%w: file exceeds %d bytes", society.ErrInvalidInput, s.maxSize)
	}
	return key, nil
}

// Open returns the stored file for serving. The key is validated against path
// traversal before touching the filesystem.
func (s *Store) Open(key string) (*os.File, error) {
	if key == "" || key != filepath.Base(key) || strings.Contains(key, "..") {
		return nil, society.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return nil, society.ErrNotFound
	}
	return f, err
}

// Remove deletes a stored file. Missing files are not an error; the record
// pointing at the blob is the source of truth, not the disk.
func (s *Store) Remove(key string) error {
	if key == "" || key != filepath.Base(key) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
