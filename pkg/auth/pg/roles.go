package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// RoleRepository implements auth.RoleRepository on PostgreSQL.
type RoleRepository struct {
	db DB
}

// NewRoleRepository creates a role repository over the pool.
func NewRoleRepository(db DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetUserRoles returns the user's current role set.
func (r *RoleRepository) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT role_name FROM user_roles WHERE user_id = $1 ORDER BY role_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}
	return roles, nil
}

// GrantRole assigns a role to the user. Granting an already-held role is a
// no-op.
func (r *RoleRepository) GrantRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_name) DO NOTHING
	`, userID, role)
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

// RevokeRole removes a role assignment. Revoking an unheld role is a no-op.
func (r *RoleRepository) RevokeRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM user_roles WHERE user_id = $1 AND role_name = $2
	`, userID, role)
	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return nil
}

// RevokeAdminRole removes the admin assignment under the last-admin guard.
// All admin assignments are locked first so two concurrent removals cannot
// both observe a count above one and leave the system without admins.
func (r *RoleRepository) RevokeAdminRole(ctx context.Context, userID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var admins int
	err = tx.QueryRow(ctx, `
		SELECT count(*) FROM (
			SELECT user_id FROM user_roles WHERE role_name = $1 FOR UPDATE
		) locked
	`, auth.RoleAdmin).Scan(&admins)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM user_roles WHERE user_id = $1 AND role_name = $2
	`, userID, auth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to revoke admin role: %w", err)
	}
	// The guard only applies when the target actually held admin.
	if tag.RowsAffected() > 0 && admins <= 1 {
		return auth.ErrLastAdmin
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit admin revocation: %w", err)
	}
	return nil
}

var _ auth.RoleRepository = (*RoleRepository)(nil)
