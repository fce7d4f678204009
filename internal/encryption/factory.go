package encryption

import (
	"fmt"

	"drivebox/internal/config"
	"drivebox/internal/drive"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Returns (nil, nil) for type "none": blobs are stored as-is.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (drive.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
