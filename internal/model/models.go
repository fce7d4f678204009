package model

import "time"

// User is an account known to the identity registry.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string // bcrypt
	CreatedAt    time.Time
}

// Directory is one node in a user's folder tree.
// Path is absolute, normalized and separator-terminated ("/", "/docs/", ...).
// The root directory has Path "/" and an empty ParentPath.
type Directory struct {
	ID         string // UUID
	OwnerID    string
	Name       string // Leaf segment; "/" for the root
	Path       string
	ParentPath string
	CreatedAt  time.Time // Assigned by the metadata store on insert
}

// File is the metadata record for one uploaded object. Path is the
// containing directory's normalized form; the bytes live in the blob store
// under StorageKey.
type File struct {
	ID          string // UUID
	OwnerID     string
	Name        string
	Path        string
	StorageKey  string // Derived from (OwnerID, Path, Name)
	ContentHash string // SHA-256 checksum of the content, hex
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

// ShareGrant is a time-limited capability letting SharedWith download one
// specific file owned by OwnerID. OwnerEmail, FileName and FileStorageKey
// are denormalized so listings don't need to touch the file record.
type ShareGrant struct {
	ID             string // UUID
	FileID         string
	OwnerID        string
	OwnerEmail     string
	SharedWith     string
	FileName       string
	FileStorageKey string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the grant is inert at the given instant.
func (g *ShareGrant) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
