package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// RoleManager mutates a user's role set under the fixed invariants: the
// vocabulary is closed, the base role is immutable, and the system never
// loses its last admin.
type RoleManager struct {
	roles  RoleRepository
	logger *slog.Logger
}

// RoleOption configures a RoleManager during construction.
type RoleOption func(*RoleManager)

// WithRoleLogger sets a custom logger for the manager.
func WithRoleLogger(l *slog.Logger) RoleOption {
	return func(m *RoleManager) {
		m.logger = l
	}
}

// NewRoleManager creates a role manager on top of the role repository.
func NewRoleManager(roles RoleRepository, opts ...RoleOption) *RoleManager {
	m := &RoleManager{
		roles:  roles,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddRole grants a role to the user. The base role is auto-assigned at
// creation only and cannot be added here.
func (m *RoleManager) AddRole(ctx context.Context, userID uuid.UUID, role string) error {
	if !IsValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == RoleUser {
		return ErrImmutableRole
	}

	if err := m.roles.GrantRole(ctx, userID, role); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}

	m.logger.Info("role granted",
		logger.UserID(userID.String()),
		logger.Role(role),
		logger.Component("roles"),
	)

	return nil
}

// RemoveRole revokes a role from the user. The base role is permanent.
// Removing admin goes through the repository's transactional guard, which
// fails with ErrLastAdmin when the target is the only admin system-wide.
func (m *RoleManager) RemoveRole(ctx context.Context, userID uuid.UUID, role string) error {
	if !IsValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == RoleUser {
		return ErrImmutableRole
	}

	var err error
	if role == RoleAdmin {
		err = m.roles.RevokeAdminRole(ctx, userID)
	} else {
		err = m.roles.RevokeRole(ctx, userID, role)
	}
	if err != nil {
		return err
	}

	m.logger.Info("role revoked",
		logger.UserID(userID.String()),
		logger.Role(role),
		logger.Component("roles"),
	)

	return nil
}

// IsAdmin reports whether the user currently holds the admin role.
func (m *RoleManager) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	roles, err := m.roles.GetUserRoles(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load roles: %w", err)
	}
	for _, r := range roles {
		if r == RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}
