package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"drivebox/internal/drive"
	"drivebox/internal/metastore/migrations"
	"drivebox/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements drive.MetadataStore on SQLite. The core never
// asks for multi-record transactions, so every method is a single
// statement; the check-then-act races documented on the interface apply
// here exactly as they would against a remote document store.
type SQLiteStore struct {
	db    *sql.DB
	clock drive.Clock
}

// NewSQLiteStore wraps an existing database connection. The caller owns
// the connection; use OpenConnection to create a properly configured one.
func NewSQLiteStore(db *sql.DB, clock drive.Clock) *SQLiteStore {
	return &SQLiteStore{db: db, clock: clock}
}

// Open opens the database at path, applies pending migrations and returns
// a ready store. path can be ":memory:" for tests.
func Open(path string, clock drive.Clock) (*SQLiteStore, *sql.DB, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}
	return NewSQLiteStore(db, clock), db, nil
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the store relies on. Exported so the identity registry and tests
// can share one handle.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return db, nil
}

// Directories

func (s *SQLiteStore) InsertDirectory(ctx context.Context, dir *model.Directory) error {
	dir.CreatedAt = s.clock.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO directories (id, owner_id, name, path, parent_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		dir.ID, dir.OwnerID, dir.Name, dir.Path, dir.ParentPath, dir.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting directory: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindDirectories(ctx context.Context, ownerID, path string) ([]model.Directory, error) {
	return s.queryDirectories(ctx,
		`SELECT id, owner_id, name, path, parent_path, created_at
		 FROM directories WHERE owner_id = ? AND path = ?`, ownerID, path)
}

func (s *SQLiteStore) ListChildDirectories(ctx context.Context, ownerID, parentPath string) ([]model.Directory, error) {
	return s.queryDirectories(ctx,
		`SELECT id, owner_id, name, path, parent_path, created_at
		 FROM directories WHERE owner_id = ? AND parent_path = ?`, ownerID, parentPath)
}

func (s *SQLiteStore) DeleteDirectories(ctx context.Context, ownerID, path string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM directories WHERE owner_id = ? AND path = ?`, ownerID, path)
	if err != nil {
		return 0, fmt.Errorf("deleting directories: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted directories: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) queryDirectories(ctx context.Context, query string, args ...any) ([]model.Directory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying directories: %w", err)
	}
	defer rows.Close()

	var out []model.Directory
	for rows.Next() {
		var d model.Directory
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Path, &d.ParentPath, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning directory: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Files

func (s *SQLiteStore) InsertFile(ctx context.Context, f *model.File) error {
	f.CreatedAt = s.clock.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, owner_id, name, path, storage_key, content_hash, size, content_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, f.Name, f.Path, f.StorageKey, f.ContentHash, f.Size, f.ContentType, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting file: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetFile(ctx context.Context, id string) (*model.File, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, path, storage_key, content_hash, size, content_type, created_at
		 FROM files WHERE id = ?`, id)

	var f model.File
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Path, &f.StorageKey, &f.ContentHash, &f.Size, &f.ContentType, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting file: %w", err)
	}
	return &f, nil
}

func (s *SQLiteStore) FindFiles(ctx context.Context, ownerID, path, name string) ([]model.File, error) {
	return s.queryFiles(ctx,
		`SELECT id, owner_id, name, path, storage_key, content_hash, size, content_type, created_at
		 FROM files WHERE owner_id = ? AND path = ? AND name = ?`, ownerID, path, name)
}

func (s *SQLiteStore) ListFiles(ctx context.Context, ownerID, path string) ([]model.File, error) {
	return s.queryFiles(ctx,
		`SELECT id, owner_id, name, path, storage_key, content_hash, size, content_type, created_at
		 FROM files WHERE owner_id = ? AND path = ?`, ownerID, path)
}

func (s *SQLiteStore) ListFilesByOwner(ctx context.Context, ownerID string) ([]model.File, error) {
	return s.queryFiles(ctx,
		`SELECT id, owner_id, name, path, storage_key, content_hash, size, content_type, created_at
		 FROM files WHERE owner_id = ?`, ownerID)
}

func (s *SQLiteStore) DeleteFiles(ctx context.Context, ownerID, path, name string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM files WHERE owner_id = ? AND path = ? AND name = ?`, ownerID, path, name)
	if err != nil {
		return 0, fmt.Errorf("deleting files: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted files: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) queryFiles(ctx context.Context, query string, args ...any) ([]model.File, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var out []model.File
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Path, &f.StorageKey, &f.ContentHash, &f.Size, &f.ContentType, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Share grants

func (s *SQLiteStore) InsertGrant(ctx context.Context, g *model.ShareGrant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO share_grants (id, file_id, owner_id, owner_email, shared_with, file_name, file_storage_key, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.FileID, g.OwnerID, g.OwnerEmail, g.SharedWith, g.FileName, g.FileStorageKey, g.CreatedAt.UTC(), g.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting grant: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGrant(ctx context.Context, id string) (*model.ShareGrant, error) {
	return s.scanGrant(s.db.QueryRowContext(ctx,
		`SELECT id, file_id, owner_id, owner_email, shared_with, file_name, file_storage_key, created_at, expires_at
		 FROM share_grants WHERE id = ?`, id))
}

func (s *SQLiteStore) FindGrant(ctx context.Context, fileID, sharedWith string) (*model.ShareGrant, error) {
	return s.scanGrant(s.db.QueryRowContext(ctx,
		`SELECT id, file_id, owner_id, owner_email, shared_with, file_name, file_storage_key, created_at, expires_at
		 FROM share_grants WHERE file_id = ? AND shared_with = ? LIMIT 1`, fileID, sharedWith))
}

func (s *SQLiteStore) ListGrantsForRecipient(ctx context.Context, recipientID string) ([]model.ShareGrant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_id, owner_id, owner_email, shared_with, file_name, file_storage_key, created_at, expires_at
		 FROM share_grants WHERE shared_with = ?`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("querying grants: %w", err)
	}
	defer rows.Close()

	var out []model.ShareGrant
	for rows.Next() {
		var g model.ShareGrant
		if err := rows.Scan(&g.ID, &g.FileID, &g.OwnerID, &g.OwnerEmail, &g.SharedWith, &g.FileName, &g.FileStorageKey, &g.CreatedAt, &g.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning grant: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteGrant(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM share_grants WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting grant: %w", err)
	}
	return nil
}

func (s *SQLiteStore) scanGrant(row *sql.Row) (*model.ShareGrant, error) {
	var g model.ShareGrant
	err := row.Scan(&g.ID, &g.FileID, &g.OwnerID, &g.OwnerEmail, &g.SharedWith, &g.FileName, &g.FileStorageKey, &g.CreatedAt, &g.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning grant: %w", err)
	}
	return &g, nil
}

// Compile-time check that SQLiteStore implements drive.MetadataStore
var _ drive.MetadataStore = (*SQLiteStore)(nil)
