package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// RefreshTokenRepository implements auth.RefreshTokenRepository on
// PostgreSQL.
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a refresh token repository over the
// pool.
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// CreateToken inserts a token row.
func (r *RefreshTokenRepository) CreateToken(ctx context.Context, token *auth.RefreshToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id, device, expires_at, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		token.TokenHash, token.UserID, token.Device,
		token.ExpiresAt, token.CreatedAt, token.LastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

// GetToken loads a token row by hash.
func (r *RefreshTokenRepository) GetToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	var t auth.RefreshToken
	err := r.db.QueryRow(ctx, `
		SELECT token_hash, user_id, device, expires_at, created_at, last_used_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`, tokenHash).Scan(&t.TokenHash, &t.UserID, &t.Device, &t.ExpiresAt, &t.CreatedAt, &t.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	return &t, nil
}

// ReplaceToken atomically deletes the old row and inserts the replacement.
// The delete must affect exactly one row: when two concurrent rotations
// present the same token, the second delete affects zero rows, the
// transaction rolls back, and the caller observes ErrTokenNotFound.
func (r *RefreshTokenRepository) ReplaceToken(ctx context.Context, oldHash string, next *auth.RefreshToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, oldHash)
	if err != nil {
		return fmt.Errorf("failed to delete rotated token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrTokenNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id, device, expires_at, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		next.TokenHash, next.UserID, next.Device,
		next.ExpiresAt, next.CreatedAt, next.LastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert replacement token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rotation: %w", err)
	}
	return nil
}

// DeleteToken removes a token row by hash.
func (r *RefreshTokenRepository) DeleteToken(ctx context.Context, tokenHash string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrTokenNotFound
	}
	return nil
}

// DeleteUserTokens removes every token of the user.
func (r *RefreshTokenRepository) DeleteUserTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user refresh tokens: %w", err)
	}
	return nil
}

var _ auth.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
