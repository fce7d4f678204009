package metastore

import (
	"context"
	"sync"

	"drivebox/internal/drive"
	"drivebox/internal/model"
)

// MemoryStore is an in-memory implementation of drive.MetadataStore,
// useful for tests and local development. Records are copied on the way in
// and out so callers never share memory with the store. Safe for
// concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	clock       drive.Clock
	directories map[string]model.Directory // id -> record
	files       map[string]model.File
	grants      map[string]model.ShareGrant
}

// NewMemoryStore creates an empty MemoryStore. CreatedAt timestamps are
// assigned from clock on insert, mirroring a server-side store clock.
func NewMemoryStore(clock drive.Clock) *MemoryStore {
	return &MemoryStore{
		clock:       clock,
		directories: make(map[string]model.Directory),
		files:       make(map[string]model.File),
		grants:      make(map[string]model.ShareGrant),
	}
}

// Directories

func (m *MemoryStore) InsertDirectory(_ context.Context, dir *model.Directory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := *dir
	rec.CreatedAt = m.clock.Now()
	m.directories[rec.ID] = rec
	dir.CreatedAt = rec.CreatedAt
	return nil
}

func (m *MemoryStore) FindDirectories(_ context.Context, ownerID, path string) ([]model.Directory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Directory
	for _, d := range m.directories {
		if d.OwnerID == ownerID && d.Path == path {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListChildDirectories(_ context.Context, ownerID, parentPath string) ([]model.Directory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Directory
	for _, d := range m.directories {
		if d.OwnerID == ownerID && d.ParentPath == parentPath {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteDirectories(_ context.Context, ownerID, path string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, d := range m.directories {
		if d.OwnerID == ownerID && d.Path == path {
			delete(m.directories, id)
			deleted++
		}
	}
	return deleted, nil
}

// Files

func (m *MemoryStore) InsertFile(_ context.Context, f *model.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := *f
	rec.CreatedAt = m.clock.Now()
	m.files[rec.ID] = rec
	f.CreatedAt = rec.CreatedAt
	return nil
}

func (m *MemoryStore) GetFile(_ context.Context, id string) (*model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (m *MemoryStore) FindFiles(_ context.Context, ownerID, path, name string) ([]model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.File
	for _, f := range m.files {
		if f.OwnerID == ownerID && f.Path == path && f.Name == name {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListFiles(_ context.Context, ownerID, path string) ([]model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.File
	for _, f := range m.files {
		if f.OwnerID == ownerID && f.Path == path {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListFilesByOwner(_ context.Context, ownerID string) ([]model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.File
	for _, f := range m.files {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteFiles(_ context.Context, ownerID, path, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, f := range m.files {
		if f.OwnerID == ownerID && f.Path == path && f.Name == name {
			delete(m.files, id)
			deleted++
		}
	}
	return deleted, nil
}

// Share grants

func (m *MemoryStore) InsertGrant(_ context.Context, g *model.ShareGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.grants[g.ID] = *g
	return nil
}

func (m *MemoryStore) GetGrant(_ context.Context, id string) (*model.ShareGrant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.grants[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *MemoryStore) FindGrant(_ context.Context, fileID, sharedWith string) (*model.ShareGrant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, g := range m.grants {
		if g.FileID == fileID && g.SharedWith == sharedWith {
			out := g
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListGrantsForRecipient(_ context.Context, recipientID string) ([]model.ShareGrant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.ShareGrant
	for _, g := range m.grants {
		if g.SharedWith == recipientID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteGrant(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.grants, id)
	return nil
}

// Compile-time check that MemoryStore implements drive.MetadataStore
var _ drive.MetadataStore = (*MemoryStore)(nil)
