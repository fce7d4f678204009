// Package encryption provides at-rest encryption for blob payloads.
package encryption

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"drivebox/internal/config"
	"drivebox/internal/drive"
)

// AgeEncryptor implements drive.Encryptor using filippo.io/age with X25519
// keys. Unlike an interactive tool, both keys sit on disk (0600) because
// the service must decrypt on demand; protecting the private key is a
// host-security concern, not a passphrase concern.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string
}

var _ drive.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates an AgeEncryptor from configuration.
func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

// Setup generates a new X25519 key pair and writes both halves to the
// configured paths. Refuses to overwrite existing keys.
func (e *AgeEncryptor) Setup() error {
	if e.IsConfigured() {
		return fmt.Errorf("key files already exist")
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(e.publicKeyPath), 0700); err != nil {
		return fmt.Errorf("creating public key directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(e.privateKeyPath), 0700); err != nil {
		return fmt.Errorf("creating private key directory: %w", err)
	}

	if err := os.WriteFile(e.publicKeyPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	if err := os.WriteFile(e.privateKeyPath, []byte(identity.String()+"\n"), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	return nil
}

// IsConfigured returns true if both key files exist at configured paths.
func (e *AgeEncryptor) IsConfigured() bool {
	if _, err := os.Stat(e.publicKeyPath); err != nil {
		return false
	}
	if _, err := os.Stat(e.privateKeyPath); err != nil {
		return false
	}
	return true
}

// Encrypt encrypts data from r to w using the public key.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	data, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		return fmt.Errorf("reading public key: %w", err)
	}

	recipient, err := age.ParseX25519Recipient(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("parsing public key: %w", err)
	}

	ew, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(ew, r); err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}
	if err := ew.Close(); err != nil {
		return fmt.Errorf("finalizing ciphertext: %w", err)
	}
	return nil
}

// Decrypt decrypts data from r to w using the private key.
func (e *AgeEncryptor) Decrypt(r io.Reader, w io.Writer) error {
	data, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		return fmt.Errorf("reading private key: %w", err)
	}

	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}

	dr, err := age.Decrypt(r, identity)
	if err != nil {
		return fmt.Errorf("decrypting: %w", err)
	}
	if _, err := io.Copy(w, dr); err != nil {
		return fmt.Errorf("reading plaintext: %w", err)
	}
	return nil
}
