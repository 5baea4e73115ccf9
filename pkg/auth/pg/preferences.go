package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// PreferencesRepository implements auth.PreferencesRepository on PostgreSQL.
type PreferencesRepository struct {
	db DB
}

// NewPreferencesRepository creates a preferences repository over the pool.
func NewPreferencesRepository(db DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// CreatePreferences inserts a preferences row.
func (r *PreferencesRepository) CreatePreferences(ctx context.Context, prefs *auth.Preferences) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_preferences (user_id, theme, locale, newsletter, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, prefs.UserID, prefs.Theme, prefs.Locale, prefs.Newsletter, prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert preferences: %w", err)
	}
	return nil
}

// GetPreferences loads preferences by user id.
func (r *PreferencesRepository) GetPreferences(ctx context.Context, userID uuid.UUID) (*auth.Preferences, error) {
	var p auth.Preferences
	err := r.db.QueryRow(ctx, `
		SELECT user_id, theme, locale, newsletter, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Theme, &p.Locale, &p.Newsletter, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return &p, nil
}

// UpdatePreferences persists preference changes.
func (r *PreferencesRepository) UpdatePreferences(ctx context.Context, prefs *auth.Preferences) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_preferences
		SET theme = $2, locale = $3, newsletter = $4, updated_at = $5
		WHERE user_id = $1
	`, prefs.UserID, prefs.Theme, prefs.Locale, prefs.Newsletter, prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrPreferencesNotFound
	}
	return nil
}

var _ auth.PreferencesRepository = (*PreferencesRepository)(nil)
