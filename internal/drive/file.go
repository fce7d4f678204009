package drive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"drivebox/internal/model"
)

// UploadRequest carries one file upload. Size is the exact number of bytes
// that will be read from Content.
type UploadRequest struct {
	OwnerID     string
	Path        string // Containing directory
	Name        string
	Content     io.Reader
	Size        int64
	ContentType string

	// Overwrite permits replacing an existing file with the same name.
	// Without it, a name collision fails with ErrAlreadyExists and no
	// side effects, so the caller can ask for confirmation.
	Overwrite bool
}

// FileEntry is a listed file annotated with its duplicate status, derived
// per call by grouping the directory's files by content hash.
type FileEntry struct {
	model.File
	IsDuplicate bool
}

// Upload stores a file's bytes and metadata. The content hash is computed
// over the full payload while it streams to the blob store.
//
// Write ordering: the blob is written first, under a key deterministic in
// (owner, path, name), so an overwrite replaces the old bytes in place and
// there is no window where neither version is retrievable. Only then are
// the old metadata records retired and the new one inserted. A metadata
// failure after the blob write leaves a detected inconsistency and is
// reported as ErrStorageInconsistency rather than hidden.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*model.File, error) {
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}
	path := Normalize(req.Path)

	existing, err := s.store.FindFiles(ctx, req.OwnerID, path, req.Name)
	if err != nil {
		return nil, fmt.Errorf("checking for existing file: %w", err)
	}
	if len(existing) > 0 && !req.Overwrite {
		return nil, fmt.Errorf("%w: file %q in %q (pass overwrite to replace)", ErrAlreadyExists, req.Name, path)
	}

	key := StorageKey(req.OwnerID, path, req.Name)
	hasher := sha256.New()
	if err := s.blobs.Put(ctx, key, io.TeeReader(req.Content, hasher), req.Size, req.ContentType); err != nil {
		return nil, fmt.Errorf("storing file content: %w", err)
	}

	if len(existing) > 0 {
		if _, err := s.store.DeleteFiles(ctx, req.OwnerID, path, req.Name); err != nil {
			return nil, fmt.Errorf("%w: new content stored but old metadata not retired: %v", ErrStorageInconsistency, err)
		}
	}

	f := &model.File{
		ID:          s.idgen.New(),
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Path:        path,
		StorageKey:  key,
		ContentHash: hex.EncodeToString(hasher.Sum(nil)),
		Size:        req.Size,
		ContentType: req.ContentType,
	}
	if err := s.store.InsertFile(ctx, f); err != nil {
		// The blob is in place but no metadata points at it: an orphan,
		// reclaimable by a later overwrite, never listed as a valid file.
		return nil, fmt.Errorf("%w: content stored but metadata insert failed: %v", ErrStorageInconsistency, err)
	}

	s.logger.Info("file uploaded", "owner", req.OwnerID, "path", path, "name", req.Name, "size", req.Size, "overwrite", req.Overwrite)
	return f, nil
}

// ListFiles returns the files in one directory, each annotated with an
// IsDuplicate flag: true for every member of a content-hash group of two
// or more. The flag is re-derived on every call; nothing is persisted.
func (s *Service) ListFiles(ctx context.Context, ownerID, path string) ([]FileEntry, error) {
	files, err := s.store.ListFiles(ctx, ownerID, Normalize(path))
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	byHash := make(map[string]int, len(files))
	for _, f := range files {
		byHash[f.ContentHash]++
	}

	entries := make([]FileEntry, len(files))
	for i, f := range files {
		entries[i] = FileEntry{File: f, IsDuplicate: byHash[f.ContentHash] >= 2}
	}
	return entries, nil
}

// FileExists reports whether the owner has a file at (path, name). Used by
// upload-confirmation flows before retrying with Overwrite set.
func (s *Service) FileExists(ctx context.Context, ownerID, path, name string) (bool, error) {
	matches, err := s.store.FindFiles(ctx, ownerID, Normalize(path), name)
	if err != nil {
		return false, fmt.Errorf("checking file existence: %w", err)
	}
	return len(matches) > 0, nil
}

// DeleteFile removes a file's metadata and blob. Returns false if no
// matching record exists. All records matching the tuple are deleted, and
// an already-absent blob is tolerated so that retried deletes succeed.
func (s *Service) DeleteFile(ctx context.Context, ownerID, path, name string) (bool, error) {
	p := Normalize(path)

	deleted, err := s.store.DeleteFiles(ctx, ownerID, p, name)
	if err != nil {
		return false, fmt.Errorf("deleting file metadata: %w", err)
	}
	if deleted == 0 {
		return false, nil
	}

	if err := s.blobs.Delete(ctx, StorageKey(ownerID, p, name)); err != nil {
		return true, fmt.Errorf("%w: metadata deleted but blob delete failed: %v", ErrStorageInconsistency, err)
	}

	s.logger.Info("file deleted", "owner", ownerID, "path", p, "name", name)
	return true, nil
}

// Download streams a file's content to w.
func (s *Service) Download(ctx context.Context, ownerID, path, name string, w io.Writer) error {
	f, err := s.findOne(ctx, ownerID, path, name)
	if err != nil {
		return err
	}

	rc, err := s.blobs.Open(ctx, f.StorageKey)
	if err != nil {
		return fmt.Errorf("opening file content: %w", err)
	}
	defer rc.Close()

	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("reading file content: %w", err)
	}
	return nil
}

// FileDownloadURL mints a time-boxed retrieval URL for the owner's file.
func (s *Service) FileDownloadURL(ctx context.Context, ownerID, path, name string, expires time.Duration) (string, error) {
	f, err := s.findOne(ctx, ownerID, path, name)
	if err != nil {
		return "", err
	}

	url, err := s.blobs.DownloadURL(ctx, f.StorageKey, expires)
	if err != nil {
		return "", fmt.Errorf("minting download URL: %w", err)
	}
	return url, nil
}

// FileByPath returns the owner's file at (path, name), or ErrNotFound.
// Racing uploads can leave several matching records; the first is returned,
// matching the tolerance documented on MetadataStore.
func (s *Service) FileByPath(ctx context.Context, ownerID, path, name string) (*model.File, error) {
	return s.findOne(ctx, ownerID, path, name)
}

func (s *Service) findOne(ctx context.Context, ownerID, path, name string) (*model.File, error) {
	matches, err := s.store.FindFiles(ctx, ownerID, Normalize(path), name)
	if err != nil {
		return nil, fmt.Errorf("finding file: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: file %q in %q", ErrNotFound, name, Normalize(path))
	}
	return &matches[0], nil
}
