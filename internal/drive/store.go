package drive

import (
	"context"

	"drivebox/internal/model"
)

// MetadataStore is the document-style store holding Directory, File and
// ShareGrant records. Implementations support equality filtering on the
// indexed fields used below and per-record insert/delete; callers assume no
// multi-record transactions, so every check-then-act sequence in this
// package is a documented best-effort race. Delete operations remove ALL
// matching records so that duplicate-record anomalies left by such races
// are cleaned up rather than tripped over.
//
// Insert methods assign CreatedAt from the store's own clock, keeping
// timestamps consistent across clients with skewed clocks.
//
// Find/Get methods return (nil, nil) when no record matches; an error means
// the backend itself failed.
//
// If the target backend grows a conditional-write primitive, the
// per-(owner, path) create races could be closed by making the inserts
// compare-and-swap on the path; the interface leaves room for that without
// touching callers.
type MetadataStore interface {
	// Directories

	// InsertDirectory stores a new directory record.
	InsertDirectory(ctx context.Context, dir *model.Directory) error

	// FindDirectories returns every directory with the exact (owner, path).
	// More than one match is a race anomaly the caller must tolerate.
	FindDirectories(ctx context.Context, ownerID, path string) ([]model.Directory, error)

	// ListChildDirectories returns directories whose ParentPath equals
	// parentPath. Order is implementation-defined.
	ListChildDirectories(ctx context.Context, ownerID, parentPath string) ([]model.Directory, error)

	// DeleteDirectories removes every directory matching (owner, path) and
	// returns how many were removed.
	DeleteDirectories(ctx context.Context, ownerID, path string) (int, error)

	// Files

	// InsertFile stores a new file record.
	InsertFile(ctx context.Context, f *model.File) error

	// GetFile returns a file by ID.
	GetFile(ctx context.Context, id string) (*model.File, error)

	// FindFiles returns every file with the exact (owner, path, name).
	FindFiles(ctx context.Context, ownerID, path, name string) ([]model.File, error)

	// ListFiles returns all files in one directory. Order is
	// implementation-defined.
	ListFiles(ctx context.Context, ownerID, path string) ([]model.File, error)

	// ListFilesByOwner returns every file the owner has, across all
	// directories.
	ListFilesByOwner(ctx context.Context, ownerID string) ([]model.File, error)

	// DeleteFiles removes every file matching (owner, path, name) and
	// returns how many were removed.
	DeleteFiles(ctx context.Context, ownerID, path, name string) (int, error)

	// Share grants

	// InsertGrant stores a new share grant.
	InsertGrant(ctx context.Context, g *model.ShareGrant) error

	// GetGrant returns a grant by ID.
	GetGrant(ctx context.Context, id string) (*model.ShareGrant, error)

	// FindGrant returns the grant for a (file, recipient) pair, if any.
	FindGrant(ctx context.Context, fileID, sharedWith string) (*model.ShareGrant, error)

	// ListGrantsForRecipient returns every grant addressed to recipientID.
	ListGrantsForRecipient(ctx context.Context, recipientID string) ([]model.ShareGrant, error)

	// DeleteGrant removes a grant by ID. Deleting an absent grant is not an
	// error.
	DeleteGrant(ctx context.Context, id string) error
}
