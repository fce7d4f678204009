package drive

import (
	"context"

	"drivebox/internal/model"
)

// IdentityRegistry resolves users by email and ID. Authentication itself
// (sessions, tokens) lives outside the core; the registry only maps
// identities and stores credential hashes for the app layer.
//
// Lookup methods return (nil, nil) when no user matches.
type IdentityRegistry interface {
	// CreateUser registers a new user. Fails with ErrAlreadyExists if the
	// email is taken. CreatedAt is assigned by the registry.
	CreateUser(ctx context.Context, u *model.User) error

	// UserByEmail resolves an email address to a user.
	UserByEmail(ctx context.Context, email string) (*model.User, error)

	// UserByID resolves a user ID to a user.
	UserByID(ctx context.Context, id string) (*model.User, error)
}
