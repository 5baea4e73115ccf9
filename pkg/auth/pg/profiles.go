package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// ProfileRepository implements auth.ProfileRepository on PostgreSQL.
type ProfileRepository struct {
	db DB
}

// NewProfileRepository creates a profile repository over the pool.
func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateProfile inserts a profile row.
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *auth.Profile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_profiles (user_id, avatar_url, bio, updated_at)
		VALUES ($1, $2, $3, $4)
	`, profile.UserID, profile.AvatarURL, profile.Bio, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// GetProfile loads a profile by user id.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*auth.Profile, error) {
	var p auth.Profile
	err := r.db.QueryRow(ctx, `
		SELECT user_id, avatar_url, bio, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.AvatarURL, &p.Bio, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile persists profile changes.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, profile *auth.Profile) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_profiles
		SET avatar_url = $2, bio = $3, updated_at = $4
		WHERE user_id = $1
	`, profile.UserID, profile.AvatarURL, profile.Bio, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrProfileNotFound
	}
	return nil
}

var _ auth.ProfileRepository = (*ProfileRepository)(nil)
