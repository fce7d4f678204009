package drive

import "io"

// Encryptor encrypts and decrypts blob payloads for at-rest protection.
// This is a server-side key model: both operations run unattended, so the
// key material must be available to the process.
type Encryptor interface {
	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt decrypts data read from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
