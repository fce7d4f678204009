package drive

import (
	"context"
	"io"
	"time"
)

// BlobStore is the key-addressed object store holding file bytes.
// All operations stream through io.Reader/io.ReadCloser so large files
// never need to fit in memory.
type BlobStore interface {
	// Put stores an object under key, replacing any existing object.
	// size is the number of bytes that will be read from r.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Open returns a reader for the object under key. The caller must close
	// it. A missing object is reported as an error wrapping
	// ErrMissingInStorage.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether an object is present under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the object under key. Deleting an absent object is
	// success, keeping deletes idempotent under retry.
	Delete(ctx context.Context, key string) error

	// DownloadURL mints a time-boxed, read-only retrieval URL for the
	// object under key.
	DownloadURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
