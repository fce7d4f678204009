package drive

import (
	"context"
	"fmt"

	"drivebox/internal/model"
)

// CreateDirectory creates a directory named name under parentPath.
// Fails with ErrInvalidName for a bad name and ErrAlreadyExists if the
// owner already has a directory at the computed path. The existence check
// and the insert are not transactional; two racing creates may both insert,
// which later deletes tolerate by removing all matches.
func (s *Service) CreateDirectory(ctx context.Context, ownerID, parentPath, name string) (*model.Directory, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	parent := Normalize(parentPath)
	path := Join(parent, name)

	existing, err := s.store.FindDirectories(ctx, ownerID, path)
	if err != nil {
		return nil, fmt.Errorf("checking for existing directory: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: directory %q in %q", ErrAlreadyExists, name, parent)
	}

	dir := &model.Directory{
		ID:         s.idgen.New(),
		OwnerID:    ownerID,
		Name:       name,
		Path:       path,
		ParentPath: parent,
	}
	if err := s.store.InsertDirectory(ctx, dir); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	s.logger.Info("directory created", "owner", ownerID, "path", path)
	return dir, nil
}

// ListDirectories returns the child directories of parentPath. Order is
// implementation-defined; callers that need stable output must sort.
func (s *Service) ListDirectories(ctx context.Context, ownerID, parentPath string) ([]model.Directory, error) {
	dirs, err := s.store.ListChildDirectories(ctx, ownerID, Normalize(parentPath))
	if err != nil {
		return nil, fmt.Errorf("listing directories: %w", err)
	}
	return dirs, nil
}

// DeleteDirectory deletes an empty directory. It fails with ErrNotEmpty if
// any child directory or file remains, returns false if no such directory
// exists, and otherwise removes every record matching the path (racing
// creates can leave more than one).
func (s *Service) DeleteDirectory(ctx context.Context, ownerID, path string) (bool, error) {
	p := Normalize(path)
	if p == Separator {
		return false, fmt.Errorf("%w: the root directory cannot be deleted", ErrInvalidName)
	}

	children, err := s.store.ListChildDirectories(ctx, ownerID, p)
	if err != nil {
		return false, fmt.Errorf("checking for child directories: %w", err)
	}
	if len(children) > 0 {
		return false, fmt.Errorf("%w: %q contains directories", ErrNotEmpty, p)
	}

	files, err := s.store.ListFiles(ctx, ownerID, p)
	if err != nil {
		return false, fmt.Errorf("checking for files: %w", err)
	}
	if len(files) > 0 {
		return false, fmt.Errorf("%w: %q contains files", ErrNotEmpty, p)
	}

	deleted, err := s.store.DeleteDirectories(ctx, ownerID, p)
	if err != nil {
		return false, fmt.Errorf("deleting directory: %w", err)
	}
	if deleted == 0 {
		return false, nil
	}

	s.logger.Info("directory deleted", "owner", ownerID, "path", p)
	return true, nil
}
