// Package app is the application layer between the CLI and the drive
// service. It constructs all dependencies from config, exposes high-level
// operations keyed by user email, and manages resource lifecycles on Close.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"drivebox/internal/blobstore"
	"drivebox/internal/config"
	"drivebox/internal/drive"
	"drivebox/internal/identity"
	"drivebox/internal/metastore"
	"drivebox/internal/model"
)

// DriveApp wires the metadata store, blob store and identity registry into
// a drive.Service and exposes string-typed operations for the CLI.
type DriveApp struct {
	cfg      *config.Config
	db       *sql.DB // nil for the memory store
	store    drive.MetadataStore
	blobs    drive.BlobStore
	registry drive.IdentityRegistry
	service  *drive.Service
	idgen    drive.IDGenerator
	logFile  *os.File
}

// NewDriveApp creates a fully wired DriveApp from the given config.
// operation identifies the CLI command being run (e.g. "Upload", "Share").
// The caller must call Close when done.
func NewDriveApp(cfg *config.Config, operation string) (*DriveApp, error) {
	ctx := context.Background()
	clock := drive.RealClock{}

	store, db, err := metastore.NewStoreFromConfig(cfg.Store, clock)
	if err != nil {
		return nil, fmt.Errorf("creating metadata store: %w", err)
	}

	closeDB := func() {
		if db != nil {
			db.Close()
		}
	}

	blobs, err := blobstore.NewBlobStoreFromConfig(ctx, cfg.Blob, cfg.Encryption)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	var registry drive.IdentityRegistry
	if db != nil {
		registry = identity.NewSQLiteRegistry(db, clock)
	} else {
		registry = identity.NewMemoryRegistry(clock)
	}

	logger, logFile, err := newLogger(cfg.LogDir, operation)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	idgen := drive.UUIDGenerator{}
	svc := drive.NewService(store, blobs, registry, &slogAdapter{l: logger}, clock, idgen)

	return &DriveApp{
		cfg:      cfg,
		db:       db,
		store:    store,
		blobs:    blobs,
		registry: registry,
		service:  svc,
		idgen:    idgen,
		logFile:  logFile,
	}, nil
}

// Close releases the database handle and the log file.
func (a *DriveApp) Close() error {
	var firstErr error
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SignUp registers a new user and creates their root directory.
func (a *DriveApp) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: malformed email %q", drive.ErrInvalidName, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &model.User{
		ID:           a.idgen.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := a.registry.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	if err := a.service.EnsureRoot(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies a user's credentials and makes sure their root directory
// exists, mirroring first-login initialization.
func (a *DriveApp) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := a.registry.UserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %q", drive.ErrNotFound, email)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: wrong password", drive.ErrAccessDenied)
	}

	if err := a.service.EnsureRoot(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// resolveUser maps an email to its user record, erroring when unknown.
func (a *DriveApp) resolveUser(ctx context.Context, email string) (*model.User, error) {
	u, err := a.registry.UserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %q", drive.ErrNotFound, email)
	}
	return u, nil
}

// MakeDirectory creates a directory under parentPath for the user.
func (a *DriveApp) MakeDirectory(ctx context.Context, email, parentPath, name string) (*model.Directory, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return a.service.CreateDirectory(ctx, u.ID, parentPath, name)
}

// RemoveDirectory deletes an empty directory.
func (a *DriveApp) RemoveDirectory(ctx context.Context, email, path string) (bool, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return false, err
	}
	return a.service.DeleteDirectory(ctx, u.ID, path)
}

// ListDirectory returns the child directories and files at path.
func (a *DriveApp) ListDirectory(ctx context.Context, email, path string) ([]model.Directory, []drive.FileEntry, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	dirs, err := a.service.ListDirectories(ctx, u.ID, path)
	if err != nil {
		return nil, nil, err
	}
	files, err := a.service.ListFiles(ctx, u.ID, path)
	if err != nil {
		return nil, nil, err
	}
	return dirs, files, nil
}

// UploadFile stores a local file into the user's directory at dirPath.
func (a *DriveApp) UploadFile(ctx context.Context, email, dirPath, localPath string, overwrite bool) (*model.File, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("opening local file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspecting local file: %w", err)
	}

	name := filepath.Base(localPath)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return a.service.Upload(ctx, drive.UploadRequest{
		OwnerID:     u.ID,
		Path:        dirPath,
		Name:        name,
		Content:     f,
		Size:        info.Size(),
		ContentType: contentType,
		Overwrite:   overwrite,
	})
}

// DownloadFile writes the named file's content to w.
func (a *DriveApp) DownloadFile(ctx context.Context, email, dirPath, name string, w io.Writer) error {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return err
	}
	return a.service.Download(ctx, u.ID, dirPath, name, w)
}

// RemoveFile deletes the named file's metadata and content.
func (a *DriveApp) RemoveFile(ctx context.Context, email, dirPath, name string) (bool, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return false, err
	}
	return a.service.DeleteFile(ctx, u.ID, dirPath, name)
}

// FileURL mints a time-boxed download URL for the user's own file.
func (a *DriveApp) FileURL(ctx context.Context, email, dirPath, name string) (string, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return "", err
	}
	return a.service.FileDownloadURL(ctx, u.ID, dirPath, name, a.urlExpiry())
}

// DuplicatesIn lists the duplicate-content groups within one directory.
func (a *DriveApp) DuplicatesIn(ctx context.Context, email, path string) ([]drive.DuplicateGroup, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return a.service.DuplicatesInDirectory(ctx, u.ID, path)
}

// DuplicatesAll lists duplicate content across the whole account.
func (a *DriveApp) DuplicatesAll(ctx context.Context, email string) (map[string][]drive.DuplicateRef, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return a.service.DuplicatesAccountWide(ctx, u.ID)
}

// Share grants recipientEmail download access to the owner's file at
// (dirPath, name) for ttlDays (the config default when zero).
func (a *DriveApp) Share(ctx context.Context, ownerEmail, dirPath, name, recipientEmail string, ttlDays int) (*model.ShareGrant, error) {
	u, err := a.resolveUser(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	f, err := a.service.FileByPath(ctx, u.ID, dirPath, name)
	if err != nil {
		return nil, err
	}

	if ttlDays <= 0 {
		ttlDays = a.cfg.Share.DefaultTTLDays
	}
	ttl := time.Duration(ttlDays) * 24 * time.Hour
	return a.service.ShareFile(ctx, u.ID, f.ID, recipientEmail, ttl)
}

// SharedWithMe lists the grants addressed to the user, reaping expired ones.
func (a *DriveApp) SharedWithMe(ctx context.Context, email string) ([]drive.SharedFile, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return a.service.SharesForRecipient(ctx, u.ID)
}

// ShareURL resolves a grant for the recipient and mints a download URL.
func (a *DriveApp) ShareURL(ctx context.Context, email, grantID string) (string, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return "", err
	}
	return a.service.SharedDownloadURL(ctx, u.ID, grantID, a.urlExpiry())
}

// RevokeShare removes a grant at the recipient's request.
func (a *DriveApp) RevokeShare(ctx context.Context, email, grantID string) (bool, error) {
	u, err := a.resolveUser(ctx, email)
	if err != nil {
		return false, err
	}
	return a.service.RevokeShare(ctx, u.ID, grantID)
}

func (a *DriveApp) urlExpiry() time.Duration {
	mins := a.cfg.Share.URLExpiryMins
	if mins <= 0 {
		mins = 15
	}
	return time.Duration(mins) * time.Minute
}
