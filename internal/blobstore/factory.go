package blobstore

import (
	"context"
	"fmt"

	"drivebox/internal/config"
	"drivebox/internal/drive"
	"drivebox/internal/encryption"
)

// NewBlobStoreFromConfig creates a BlobStore implementation based on the
// blob config type, wrapping it with at-rest encryption when configured.
func NewBlobStoreFromConfig(ctx context.Context, cfg config.BlobConfig, enc config.EncryptionConfig) (drive.BlobStore, error) {
	var store drive.BlobStore
	var err error

	switch cfg.Type {
	case "memory":
		store = NewMemoryBlobStore()
	case "filesystem", "":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem blob store requires root to be set")
		}
		store, err = NewFileSystemBlobStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("creating filesystem blob store: %w", err)
		}
	case "s3":
		store, err = NewS3BlobStore(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			KeyPrefix: cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 blob store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown blob store type: %q", cfg.Type)
	}

	encryptor, err := encryption.NewEncryptorFromConfig(enc)
	if err != nil {
		return nil, err
	}
	if encryptor != nil {
		store = NewEncryptedBlobStore(store, encryptor)
	}
	return store, nil
}
