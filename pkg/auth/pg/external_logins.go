package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// ExternalLoginRepository implements auth.ExternalLoginRepository on
// PostgreSQL.
type ExternalLoginRepository struct {
	db DB
}

// NewExternalLoginRepository creates an external login repository over the
// pool.
func NewExternalLoginRepository(db DB) *ExternalLoginRepository {
	return &ExternalLoginRepository{db: db}
}

// CreateLogin inserts a provider identity link.
func (r *ExternalLoginRepository) CreateLogin(ctx context.Context, login *auth.ExternalLogin) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_external_logins (provider, provider_user_id, user_id, linked_at)
		VALUES ($1, $2, $3, $4)
	`, login.Provider, login.ProviderUserID, login.UserID, login.LinkedAt)
	if err != nil {
		return fmt.Errorf("failed to insert external login: %w", err)
	}
	return nil
}

// GetLogin resolves a (provider, providerUserID) pair.
func (r *ExternalLoginRepository) GetLogin(ctx context.Context, provider, providerUserID string) (*auth.ExternalLogin, error) {
	var l auth.ExternalLogin
	err := r.db.QueryRow(ctx, `
		SELECT provider, provider_user_id, user_id, linked_at
		FROM user_external_logins
		WHERE provider = $1 AND provider_user_id = $2
	`, provider, providerUserID).Scan(&l.Provider, &l.ProviderUserID, &l.UserID, &l.LinkedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrLoginNotFound
		}
		return nil, fmt.Errorf("failed to load external login: %w", err)
	}
	return &l, nil
}

// ListUserLogins returns every provider link of the user.
func (r *ExternalLoginRepository) ListUserLogins(ctx context.Context, userID uuid.UUID) ([]auth.ExternalLogin, error) {
	rows, err := r.db.Query(ctx, `
		SELECT provider, provider_user_id, user_id, linked_at
		FROM user_external_logins
		WHERE user_id = $1
		ORDER BY linked_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list external logins: %w", err)
	}
	defer rows.Close()

	var logins []auth.ExternalLogin
	for rows.Next() {
		var l auth.ExternalLogin
		if err := rows.Scan(&l.Provider, &l.ProviderUserID, &l.UserID, &l.LinkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan external login: %w", err)
		}
		logins = append(logins, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate external logins: %w", err)
	}
	return logins, nil
}

var _ auth.ExternalLoginRepository = (*ExternalLoginRepository)(nil)
