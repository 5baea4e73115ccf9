package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

func TestRoleManagerAddRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("grants a vocabulary role", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		roles.On("GrantRole", ctx, userID, auth.RoleTrustedContact).Return(nil)

		require.NoError(t, manager.AddRole(ctx, userID, auth.RoleTrustedContact))
		roles.AssertExpectations(t)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		err := manager.AddRole(ctx, userID, "superuser")
		assert.ErrorIs(t, err, auth.ErrInvalidRole)
		roles.AssertNotCalled(t, "GrantRole", ctx, userID, "superuser")
	})

	t.Run("rejects base role", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		err := manager.AddRole(ctx, userID, auth.RoleUser)
		assert.ErrorIs(t, err, auth.ErrImmutableRole)
	})
}

func TestRoleManagerRemoveRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("revokes a vocabulary role", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		roles.On("RevokeRole", ctx, userID, auth.RoleEmailVerified).Return(nil)

		require.NoError(t, manager.RemoveRole(ctx, userID, auth.RoleEmailVerified))
		roles.AssertExpectations(t)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		err := manager.RemoveRole(ctx, userID, "superuser")
		assert.ErrorIs(t, err, auth.ErrInvalidRole)
	})

	t.Run("rejects base role", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		err := manager.RemoveRole(ctx, userID, auth.RoleUser)
		assert.ErrorIs(t, err, auth.ErrImmutableRole)
		roles.AssertNotCalled(t, "RevokeRole", ctx, userID, auth.RoleUser)
	})

	t.Run("admin removal goes through the guarded path", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		roles.On("RevokeAdminRole", ctx, userID).Return(nil)

		require.NoError(t, manager.RemoveRole(ctx, userID, auth.RoleAdmin))
		roles.AssertNotCalled(t, "RevokeRole", ctx, userID, auth.RoleAdmin)
	})

	t.Run("last admin is protected", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		roles.On("RevokeAdminRole", ctx, userID).Return(auth.ErrLastAdmin)

		err := manager.RemoveRole(ctx, userID, auth.RoleAdmin)
		assert.ErrorIs(t, err, auth.ErrLastAdmin)
	})
}

func TestRoleManagerIsAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("admin user", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		roles.On("GetUserRoles", ctx, userID).Return([]string{auth.RoleUser, auth.RoleAdmin}, nil)

		isAdmin, err := manager.IsAdmin(ctx, userID)
		require.NoError(t, err)
		assert.True(t, isAdmin)
	})

	t.Run("regular user", func(t *testing.T) {
		t.Parallel()

		roles := new(MockRoleRepository)
		manager := auth.NewRoleManager(roles)

		roles.On("GetUserRoles", ctx, userID).Return([]string{auth.RoleUser, auth.RoleEmailVerified}, nil)

		isAdmin, err := manager.IsAdmin(ctx, userID)
		require.NoError(t, err)
		assert.False(t, isAdmin)
	})
}

func TestIsValidRole(t *testing.T) {
	t.Parallel()

	for _, role := range []string{auth.RoleUser, auth.RoleEmailVerified, auth.RoleTrustedContact, auth.RoleAdmin} {
		assert.True(t, auth.IsValidRole(role), role)
	}
	assert.False(t, auth.IsValidRole("superuser"))
	assert.False(t, auth.IsValidRole(""))
	assert.False(t, auth.IsValidRole("Admin"))
}
