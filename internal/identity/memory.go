// Package identity implements the user registry backing email/ID
// resolution for the drive core.
package identity

import (
	"context"
	"fmt"
	"sync"

	"drivebox/internal/drive"
	"drivebox/internal/model"
)

// MemoryRegistry is an in-memory drive.IdentityRegistry for tests and
// local development. Safe for concurrent use.
type MemoryRegistry struct {
	mu      sync.RWMutex
	clock   drive.Clock
	byID    map[string]model.User
	byEmail map[string]string // email -> id
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry(clock drive.Clock) *MemoryRegistry {
	return &MemoryRegistry{
		clock:   clock,
		byID:    make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRegistry) CreateUser(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return fmt.Errorf("%w: user %q", drive.ErrAlreadyExists, u.Email)
	}

	rec := *u
	rec.CreatedAt = r.clock.Now()
	r.byID[rec.ID] = rec
	r.byEmail[rec.Email] = rec.ID
	u.CreatedAt = rec.CreatedAt
	return nil
}

func (r *MemoryRegistry) UserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryRegistry) UserByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Compile-time check that MemoryRegistry implements drive.IdentityRegistry
var _ drive.IdentityRegistry = (*MemoryRegistry)(nil)
