package drive

import "errors"

// Domain error kinds surfaced to the request layer. Callers match them with
// errors.Is; the wrapped message carries the human-readable detail.
var (
	// ErrInvalidName is returned when a directory or file name is empty,
	// contains the path separator, or is the parent-reference token.
	ErrInvalidName = errors.New("invalid name")

	// ErrAlreadyExists is returned when a create would collide with an
	// existing record (directory path, file name, or share grant).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotEmpty is returned when deleting a directory that still contains
	// child directories or files.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner is returned when the acting user does not own the file.
	ErrNotOwner = errors.New("not the file owner")

	// ErrAccessDenied is returned when a grant is addressed to someone else.
	ErrAccessDenied = errors.New("access denied")

	// ErrRecipientNotFound is returned when a share recipient's email does
	// not resolve to a known user.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrSelfShare is returned when sharing a file with its own owner.
	ErrSelfShare = errors.New("cannot share a file with yourself")

	// ErrShareExpired is returned when a grant is consumed past ExpiresAt.
	ErrShareExpired = errors.New("share expired")

	// ErrFileDeleted is returned when a grant's backing file record is gone.
	ErrFileDeleted = errors.New("shared file has been deleted")

	// ErrMissingInStorage is returned when a file's metadata exists but the
	// blob store has no object under its storage key.
	ErrMissingInStorage = errors.New("file missing in storage")

	// ErrStorageInconsistency flags a detected blob/metadata mismatch that
	// the core does not auto-repair. It is surfaced for operator attention.
	ErrStorageInconsistency = errors.New("metadata and blob storage out of sync")
)
