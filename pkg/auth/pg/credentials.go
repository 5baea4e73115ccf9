package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// CredentialsRepository implements auth.CredentialsRepository on PostgreSQL.
type CredentialsRepository struct {
	db DB
}

// NewCredentialsRepository creates a credentials repository over the pool.
func NewCredentialsRepository(db DB) *CredentialsRepository {
	return &CredentialsRepository{db: db}
}

// StorePasswordHash upserts the password hash for a user.
func (r *CredentialsRepository) StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()
	`, userID, hash)
	if err != nil {
		return fmt.Errorf("failed to store password hash: %w", err)
	}
	return nil
}

// GetPasswordHash loads the password hash for a user. OAuth-only accounts
// have no row and return auth.ErrCredentialsNotFound.
func (r *CredentialsRepository) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var hash []byte
	err := r.db.QueryRow(ctx, `
		SELECT password_hash FROM user_credentials WHERE user_id = $1
	`, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to load password hash: %w", err)
	}
	return hash, nil
}

var _ auth.CredentialsRepository = (*CredentialsRepository)(nil)
