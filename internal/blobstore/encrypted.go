package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"drivebox/internal/drive"
)

// EncryptedBlobStore wraps another BlobStore and encrypts payloads at rest.
// The ciphertext is buffered before the inner Put because its length is
// only known once encryption finishes; uploads are request-sized, so this
// stays within the same memory envelope as the request itself.
//
// DownloadURL is unsupported: a presigned URL would hand the recipient raw
// ciphertext. Callers must stream through Open, which decrypts.
type EncryptedBlobStore struct {
	inner     drive.BlobStore
	encryptor drive.Encryptor
}

// NewEncryptedBlobStore wraps inner with at-rest encryption.
func NewEncryptedBlobStore(inner drive.BlobStore, encryptor drive.Encryptor) *EncryptedBlobStore {
	return &EncryptedBlobStore{inner: inner, encryptor: encryptor}
}

func (s *EncryptedBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	var ciphertext bytes.Buffer
	if err := s.encryptor.Encrypt(io.LimitReader(r, size), &ciphertext); err != nil {
		return fmt.Errorf("encrypting content: %w", err)
	}
	return s.inner.Put(ctx, key, &ciphertext, int64(ciphertext.Len()), contentType)
}

func (s *EncryptedBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.inner.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var plaintext bytes.Buffer
	if err := s.encryptor.Decrypt(rc, &plaintext); err != nil {
		return nil, fmt.Errorf("decrypting content: %w", err)
	}
	return io.NopCloser(&plaintext), nil
}

func (s *EncryptedBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.inner.Exists(ctx, key)
}

func (s *EncryptedBlobStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *EncryptedBlobStore) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "", fmt.Errorf("download URLs are unavailable for encrypted storage (key %s): stream the file instead", key)
}

// Compile-time check that EncryptedBlobStore implements drive.BlobStore
var _ drive.BlobStore = (*EncryptedBlobStore)(nil)
