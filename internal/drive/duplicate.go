package drive

import (
	"context"
	"fmt"
	"sort"

	"drivebox/internal/model"
)

// DuplicateGroup is a set of two or more files in one directory sharing a
// content hash. Full records are included so a caller can decide which
// copies to keep.
type DuplicateGroup struct {
	Hash  string
	Files []model.File
}

// DuplicateRef is the minimal display form used by the account-wide view,
// which is meant for bulk review rather than per-file action.
type DuplicateRef struct {
	FileID string
	Name   string
	Path   string
}

// DuplicatesInDirectory partitions a directory's files by content hash and
// returns the groups of size two or more, sorted by hash for stable output.
// Identical content under different names groups together; grouping never
// crosses directories in this view.
func (s *Service) DuplicatesInDirectory(ctx context.Context, ownerID, path string) ([]DuplicateGroup, error) {
	files, err := s.store.ListFiles(ctx, ownerID, Normalize(path))
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return groupByHash(files), nil
}

// DuplicatesAccountWide groups every file the owner has, regardless of
// directory, by content hash. Only hashes with two or more files appear.
func (s *Service) DuplicatesAccountWide(ctx context.Context, ownerID string) (map[string][]DuplicateRef, error) {
	files, err := s.store.ListFilesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing account files: %w", err)
	}

	byHash := make(map[string][]DuplicateRef)
	for _, f := range files {
		byHash[f.ContentHash] = append(byHash[f.ContentHash], DuplicateRef{
			FileID: f.ID,
			Name:   f.Name,
			Path:   f.Path,
		})
	}
	for hash, refs := range byHash {
		if len(refs) < 2 {
			delete(byHash, hash)
		}
	}
	return byHash, nil
}

func groupByHash(files []model.File) []DuplicateGroup {
	byHash := make(map[string][]model.File)
	for _, f := range files {
		byHash[f.ContentHash] = append(byHash[f.ContentHash], f)
	}

	var groups []DuplicateGroup
	for hash, members := range byHash {
		if len(members) >= 2 {
			groups = append(groups, DuplicateGroup{Hash: hash, Files: members})
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Hash < groups[j].Hash })
	return groups
}
