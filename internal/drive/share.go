package drive

import (
	"context"
	"fmt"
	"time"

	"drivebox/internal/model"
)

// SharedFile is a grant as seen by its recipient. MissingInStorage is set
// when the grant survives but the backing blob is gone; the grant is kept
// so the recipient learns the owner's file disappeared instead of having
// the share silently vanish.
type SharedFile struct {
	Grant            model.ShareGrant
	MissingInStorage bool
}

// ShareFile grants recipientEmail time-limited download access to one of
// the caller's files. The TTL is an explicit time.Duration; expires_at is
// now + ttl. Validation order: recipient resolution, self-share, file
// existence and ownership, existing-grant check, then blob presence.
func (s *Service) ShareFile(ctx context.Context, ownerID, fileID, recipientEmail string, ttl time.Duration) (*model.ShareGrant, error) {
	recipient, err := s.identity.UserByEmail(ctx, recipientEmail)
	if err != nil {
		return nil, fmt.Errorf("resolving recipient: %w", err)
	}
	if recipient == nil {
		return nil, fmt.Errorf("%w: %q", ErrRecipientNotFound, recipientEmail)
	}
	if recipient.ID == ownerID {
		return nil, ErrSelfShare
	}

	f, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("finding file: %w", err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, fileID)
	}
	if f.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: file %s", ErrNotOwner, fileID)
	}

	existing, err := s.store.FindGrant(ctx, fileID, recipient.ID)
	if err != nil {
		return nil, fmt.Errorf("checking for existing grant: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q already has a share for this file", ErrAlreadyExists, recipientEmail)
	}

	present, err := s.blobs.Exists(ctx, f.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("checking blob presence: %w", err)
	}
	if !present {
		return nil, fmt.Errorf("%w: %s", ErrMissingInStorage, f.StorageKey)
	}

	owner, err := s.identity.UserByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolving owner: %w", err)
	}
	ownerEmail := ""
	if owner != nil {
		ownerEmail = owner.Email
	}

	now := s.clock.Now()
	g := &model.ShareGrant{
		ID:             s.idgen.New(),
		FileID:         f.ID,
		OwnerID:        ownerID,
		OwnerEmail:     ownerEmail,
		SharedWith:     recipient.ID,
		FileName:       f.Name,
		FileStorageKey: f.StorageKey,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
	if err := s.store.InsertGrant(ctx, g); err != nil {
		return nil, fmt.Errorf("creating share grant: %w", err)
	}

	s.logger.Info("file shared", "owner", ownerID, "file", f.Name, "recipient", recipient.ID, "expires_at", g.ExpiresAt)
	return g, nil
}

// SharesForRecipient lists the grants addressed to recipientID. Expired
// grants are deleted as a side effect and excluded (lazy reaping); the
// survivors are checked for backing-blob presence and flagged, not
// deleted, when the blob is gone.
func (s *Service) SharesForRecipient(ctx context.Context, recipientID string) ([]SharedFile, error) {
	grants, err := s.store.ListGrantsForRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("listing share grants: %w", err)
	}

	now := s.clock.Now()
	var out []SharedFile
	for _, g := range grants {
		if g.Expired(now) {
			if err := s.store.DeleteGrant(ctx, g.ID); err != nil {
				s.logger.Warn("reaping expired grant failed", "grant", g.ID, "error", err)
			}
			continue
		}

		present, err := s.blobs.Exists(ctx, g.FileStorageKey)
		if err != nil {
			return nil, fmt.Errorf("checking blob presence: %w", err)
		}
		out = append(out, SharedFile{Grant: g, MissingInStorage: !present})
	}
	return out, nil
}

// ResolveSharedDownload validates a grant for its recipient and returns the
// storage key the blob store needs to mint a retrieval URL. An expired
// grant is deleted before ErrShareExpired is returned, and a grant whose
// file record is gone is likewise deleted before ErrFileDeleted: using a
// dead grant is what retires it.
func (s *Service) ResolveSharedDownload(ctx context.Context, recipientID, grantID string) (string, error) {
	g, err := s.store.GetGrant(ctx, grantID)
	if err != nil {
		return "", fmt.Errorf("finding grant: %w", err)
	}
	if g == nil {
		return "", fmt.Errorf("%w: grant %s", ErrNotFound, grantID)
	}
	if g.SharedWith != recipientID {
		return "", fmt.Errorf("%w: grant %s", ErrAccessDenied, grantID)
	}

	if g.Expired(s.clock.Now()) {
		if err := s.store.DeleteGrant(ctx, g.ID); err != nil {
			s.logger.Warn("reaping expired grant failed", "grant", g.ID, "error", err)
		}
		return "", fmt.Errorf("%w: grant %s", ErrShareExpired, grantID)
	}

	f, err := s.store.GetFile(ctx, g.FileID)
	if err != nil {
		return "", fmt.Errorf("finding shared file: %w", err)
	}
	if f == nil {
		if err := s.store.DeleteGrant(ctx, g.ID); err != nil {
			s.logger.Warn("reaping dead grant failed", "grant", g.ID, "error", err)
		}
		return "", fmt.Errorf("%w: file %s", ErrFileDeleted, g.FileID)
	}

	present, err := s.blobs.Exists(ctx, f.StorageKey)
	if err != nil {
		return "", fmt.Errorf("checking blob presence: %w", err)
	}
	if !present {
		return "", fmt.Errorf("%w: %s", ErrMissingInStorage, f.StorageKey)
	}

	return f.StorageKey, nil
}

// SharedDownloadURL resolves a grant and mints a time-boxed retrieval URL
// for its content.
func (s *Service) SharedDownloadURL(ctx context.Context, recipientID, grantID string, expires time.Duration) (string, error) {
	key, err := s.ResolveSharedDownload(ctx, recipientID, grantID)
	if err != nil {
		return "", err
	}

	url, err := s.blobs.DownloadURL(ctx, key, expires)
	if err != nil {
		return "", fmt.Errorf("minting download URL: %w", err)
	}
	return url, nil
}

// RevokeShare removes a grant at its recipient's request. Returns false if
// the grant is absent and ErrAccessDenied if it belongs to someone else.
func (s *Service) RevokeShare(ctx context.Context, recipientID, grantID string) (bool, error) {
	g, err := s.store.GetGrant(ctx, grantID)
	if err != nil {
		return false, fmt.Errorf("finding grant: %w", err)
	}
	if g == nil {
		return false, nil
	}
	if g.SharedWith != recipientID {
		return false, fmt.Errorf("%w: grant %s", ErrAccessDenied, grantID)
	}

	if err := s.store.DeleteGrant(ctx, g.ID); err != nil {
		return false, fmt.Errorf("deleting grant: %w", err)
	}

	s.logger.Info("share revoked", "grant", grantID, "recipient", recipientID)
	return true, nil
}
