package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/pkg/auth"
	pgdb "github.com/dmitrymomot/authkit/pkg/pg"
)

// UserRepository implements auth.UserRepository on PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a user repository over the pool.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts an identity record. A duplicate email surfaces as
// auth.ErrEmailAlreadyExists since email uniqueness is not secret.
func (r *UserRepository) CreateUser(ctx context.Context, user *auth.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, display_name, slug, real_name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		user.ID, user.Email, user.DisplayName, user.Slug, user.RealName,
		user.Active, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pgdb.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID loads a user by primary key.
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, `
		SELECT id, email, display_name, slug, real_name, active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

// GetUserByEmail loads a user by email. Matching is case-insensitive; the
// caller is expected to pass a normalized address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, `
		SELECT id, email, display_name, slug, real_name, active, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email))
}

// UpdateUser persists the mutable fields of a user record.
func (r *UserRepository) UpdateUser(ctx context.Context, user *auth.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $2, display_name = $3, slug = $4, real_name = $5, active = $6, updated_at = $7
		WHERE id = $1
	`,
		user.ID, user.Email, user.DisplayName, user.Slug, user.RealName,
		user.Active, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user; dependent rows cascade at the schema level.
func (r *UserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// SlugExists reports whether a slug is taken.
func (r *UserRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Slug, &u.RealName, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

var _ auth.UserRepository = (*UserRepository)(nil)
