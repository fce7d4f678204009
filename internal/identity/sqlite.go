package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"drivebox/internal/drive"
	"drivebox/internal/model"

	"github.com/mattn/go-sqlite3"
)

// SQLiteRegistry implements drive.IdentityRegistry on the users table of
// the metadata database. It shares the *sql.DB opened by the metastore; the
// schema is managed by the metastore migrations.
type SQLiteRegistry struct {
	db    *sql.DB
	clock drive.Clock
}

// NewSQLiteRegistry wraps an existing database connection.
func NewSQLiteRegistry(db *sql.DB, clock drive.Clock) *SQLiteRegistry {
	return &SQLiteRegistry{db: db, clock: clock}
}

func (r *SQLiteRegistry) CreateUser(ctx context.Context, u *model.User) error {
	u.CreatedAt = r.clock.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: user %q", drive.ErrAlreadyExists, u.Email)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *SQLiteRegistry) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRegistry) UserByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRegistry) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// Compile-time check that SQLiteRegistry implements drive.IdentityRegistry
var _ drive.IdentityRegistry = (*SQLiteRegistry)(nil)
