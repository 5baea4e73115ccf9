package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// PasswordResetTokenRepository implements auth.PasswordResetTokenRepository
// on PostgreSQL.
type PasswordResetTokenRepository struct {
	db DB
}

// NewPasswordResetTokenRepository creates a reset token repository over the
// pool.
func NewPasswordResetTokenRepository(db DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

// CreateToken inserts a reset token row.
func (r *PasswordResetTokenRepository) CreateToken(ctx context.Context, token *auth.PasswordResetToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, token.TokenHash, token.UserID, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reset token: %w", err)
	}
	return nil
}

// GetActiveToken loads a reset token that is unexpired and unused as of
// now. Expired and consumed rows are filtered in the query itself so
// callers cannot distinguish the two.
func (r *PasswordResetTokenRepository) GetActiveToken(ctx context.Context, tokenHash string, now time.Time) (*auth.PasswordResetToken, error) {
	var t auth.PasswordResetToken
	err := r.db.QueryRow(ctx, `
		SELECT token_hash, user_id, expires_at, created_at, used_at
		FROM password_reset_tokens
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
	`, tokenHash, now).Scan(&t.TokenHash, &t.UserID, &t.ExpiresAt, &t.CreatedAt, &t.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to load reset token: %w", err)
	}
	return &t, nil
}

// MarkTokenUsed sets used_at, permanently invalidating the token. Marking
// an already-used token affects zero rows and reports not found, so a
// token redeems at most once.
func (r *PasswordResetTokenRepository) MarkTokenUsed(ctx context.Context, tokenHash string, usedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL
	`, tokenHash, usedAt)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrTokenNotFound
	}
	return nil
}

var _ auth.PasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)
