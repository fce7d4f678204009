package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drivebox/internal/drive"
)

// FileSystemBlobStore stores objects as files under a root directory.
// Storage keys contain the virtual separator, so each key maps to a nested
// path under the root. Intended for single-host deployments and local
// development.
type FileSystemBlobStore struct {
	root string
}

// NewFileSystemBlobStore creates a blob store rooted at the given path.
func NewFileSystemBlobStore(root string) (*FileSystemBlobStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FileSystemBlobStore{root: root}, nil
}

// objectPath maps a storage key to a path under the root. Keys are built
// from validated segments, but reject any that would escape the root or,
// via a parent-reference segment, resolve onto another owner's object.
func (s *FileSystemBlobStore) objectPath(key string) (string, error) {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid storage key: %q", key)
		}
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *FileSystemBlobStore) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	dest, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}

	// Write to a temp file and rename so readers never see partial content.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("moving object into place: %w", err)
	}
	return nil
}

func (s *FileSystemBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	src, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", drive.ErrMissingInStorage, key)
		}
		return nil, fmt.Errorf("opening object: %w", err)
	}
	return f, nil
}

func (s *FileSystemBlobStore) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.objectPath(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking object: %w", err)
	}
	return true, nil
}

// Delete removes an object. An absent object is success.
func (s *FileSystemBlobStore) Delete(_ context.Context, key string) error {
	p, err := s.objectPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing object: %w", err)
	}
	return nil
}

// DownloadURL returns a file:// URL. Local files carry no expiry; expires
// is accepted for interface compatibility only.
func (s *FileSystemBlobStore) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	p, err := s.objectPath(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", drive.ErrMissingInStorage, key)
		}
		return "", fmt.Errorf("checking object: %w", err)
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving object path: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Compile-time check that FileSystemBlobStore implements drive.BlobStore
var _ drive.BlobStore = (*FileSystemBlobStore)(nil)
