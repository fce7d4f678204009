package testutil

import (
	"bytes"
	"context"
	"testing"

	"drivebox/internal/blobstore"
	"drivebox/internal/drive"
	"drivebox/internal/identity"
	"drivebox/internal/metastore"
	"drivebox/internal/model"
)

// Fixture bundles a Service with the fakes behind it so tests can
// inspect and manipulate state directly.
type Fixture struct {
	Service  *drive.Service
	Store    *metastore.MemoryStore
	Blobs    *blobstore.MemoryBlobStore
	Registry *identity.MemoryRegistry
	Clock    *StubClock
	IDGen    *StubIDGenerator
}

// NewFixture creates a Service wired to in-memory backends, a stub
// clock and a stub ID generator.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()

	clock := FixedClock()
	idgen := NewStubIDGenerator()
	store := metastore.NewMemoryStore(clock)
	blobs := blobstore.NewMemoryBlobStore()
	registry := identity.NewMemoryRegistry(clock)

	svc := drive.NewService(store, blobs, registry, drive.NewNopLogger(), clock, idgen)

	return &Fixture{
		Service:  svc,
		Store:    store,
		Blobs:    blobs,
		Registry: registry,
		Clock:    clock,
		IDGen:    idgen,
	}
}

// NewUser registers a user and creates their root directory.
func (f *Fixture) NewUser(t *testing.T, email string) *model.User {
	t.Helper()

	u := &model.User{
		ID:           f.IDGen.New(),
		Email:        email,
		PasswordHash: "x",
	}
	if err := f.Registry.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	if err := f.Service.EnsureRoot(context.Background(), u.ID); err != nil {
		t.Fatalf("failed to create root for %s: %v", email, err)
	}
	return u
}

// PutFile uploads content as a file named name in dirPath.
func (f *Fixture) PutFile(t *testing.T, ownerID, dirPath, name string, content []byte) *model.File {
	t.Helper()

	file, err := f.Service.Upload(context.Background(), drive.UploadRequest{
		OwnerID:     ownerID,
		Path:        dirPath,
		Name:        name,
		Content:     bytes.NewReader(content),
		Size:        int64(len(content)),
		ContentType: "text/plain",
	})
	if err != nil {
		t.Fatalf("failed to upload %s/%s: %v", dirPath, name, err)
	}
	return file
}
