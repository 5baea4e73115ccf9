package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

type linkerFixture struct {
	users    *MockUserRepository
	logins   *MockExternalLoginRepository
	profiles *MockProfileRepository
	prefs    *MockPreferencesRepository
	roles    *MockRoleRepository
	linker   *auth.OAuthLinker
}

func newLinkerFixture(opts ...auth.LinkerOption) *linkerFixture {
	f := &linkerFixture{
		users:    new(MockUserRepository),
		logins:   new(MockExternalLoginRepository),
		profiles: new(MockProfileRepository),
		prefs:    new(MockPreferencesRepository),
		roles:    new(MockRoleRepository),
	}
	f.linker = auth.NewOAuthLinker(f.users, f.logins, f.profiles, f.prefs, f.roles, opts...)
	return f
}

func TestOAuthLinkerKnownLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newLinkerFixture()

	user := &auth.User{ID: uuid.New(), Email: "user@example.com", Active: true}
	login := &auth.ExternalLogin{UserID: user.ID, Provider: auth.OAuthProviderGoogle, ProviderUserID: "g-123"}

	f.logins.On("GetLogin", ctx, auth.OAuthProviderGoogle, "g-123").Return(login, nil)
	f.users.On("GetUserByID", ctx, user.ID).Return(user, nil)

	resolved, err := f.linker.Resolve(ctx, auth.ProviderProfile{
		Provider:       auth.OAuthProviderGoogle,
		ProviderUserID: "g-123",
		Email:          "user@example.com",
		EmailVerified:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, user, resolved)

	// A pure login mutates nothing.
	f.users.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	f.logins.AssertNotCalled(t, "CreateLogin", mock.Anything, mock.Anything)
	f.roles.AssertNotCalled(t, "GrantRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestOAuthLinkerEmailMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("links and verifies an unverified local account", func(t *testing.T) {
		t.Parallel()

		f := newLinkerFixture()
		user := &auth.User{
			ID:          uuid.New(),
			Email:       "user@example.com",
			DisplayName: "user",
			Slug:        "user",
			Active:      true,
		}

		f.logins.On("GetLogin", ctx, auth.OAuthProviderGoogle, "g-123").Return(nil, auth.ErrLoginNotFound)
		f.users.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil)

		var linked *auth.ExternalLogin
		f.logins.On("CreateLogin", ctx, mock.AnythingOfType("*auth.ExternalLogin")).
			Run(func(args mock.Arguments) {
				linked = args.Get(1).(*auth.ExternalLogin)
			}).
			Return(nil)
		f.users.On("UpdateUser", ctx, user).Return(nil)
		f.profiles.On("GetProfile", ctx, user.ID).Return(&auth.Profile{UserID: user.ID}, nil)
		f.profiles.On("UpdateProfile", ctx, mock.AnythingOfType("*auth.Profile")).Return(nil)
		f.roles.On("GrantRole", ctx, user.ID, auth.RoleEmailVerified).Return(nil)

		resolved, err := f.linker.Resolve(ctx, auth.ProviderProfile{
			Provider:       auth.OAuthProviderGoogle,
			ProviderUserID: "g-123",
			Email:          "User@Example.com",
			Name:           "Jane Doe",
			AvatarURL:      "https://example.com/avatar.png",
			EmailVerified:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)

		require.NotNil(t, linked)
		assert.Equal(t, user.ID, linked.UserID)
		assert.Equal(t, auth.OAuthProviderGoogle, linked.Provider)
		assert.Equal(t, "g-123", linked.ProviderUserID)

		// Provider data is trusted: role granted, real name carried over.
		f.roles.AssertCalled(t, "GrantRole", ctx, user.ID, auth.RoleEmailVerified)
		require.NotNil(t, resolved.RealName)
		assert.Equal(t, "Jane Doe", *resolved.RealName)

		// No second account was created for the same email.
		f.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("inactive account fails uniformly", func(t *testing.T) {
		t.Parallel()

		f := newLinkerFixture()
		user := &auth.User{ID: uuid.New(), Email: "user@example.com", Active: false}

		f.logins.On("GetLogin", ctx, auth.OAuthProviderGoogle, "g-123").Return(nil, auth.ErrLoginNotFound)
		f.users.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil)

		_, err := f.linker.Resolve(ctx, auth.ProviderProfile{
			Provider:       auth.OAuthProviderGoogle,
			ProviderUserID: "g-123",
			Email:          "user@example.com",
			EmailVerified:  true,
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestOAuthLinkerCreatesUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("fresh account with base and verified roles", func(t *testing.T) {
		t.Parallel()

		f := newLinkerFixture()
		f.logins.On("GetLogin", ctx, auth.OAuthProviderGithub, "gh-7").Return(nil, auth.ErrLoginNotFound)
		f.users.On("GetUserByEmail", ctx, "jane@example.com").Return(nil, auth.ErrUserNotFound)
		f.users.On("SlugExists", ctx, "jane-doe").Return(false, nil)

		var created *auth.User
		f.users.On("CreateUser", ctx, mock.AnythingOfType("*auth.User")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*auth.User)
			}).
			Return(nil)
		f.logins.On("CreateLogin", ctx, mock.AnythingOfType("*auth.ExternalLogin")).Return(nil)
		f.profiles.On("CreateProfile", ctx, mock.AnythingOfType("*auth.Profile")).Return(nil)
		f.prefs.On("CreatePreferences", ctx, mock.AnythingOfType("*auth.Preferences")).Return(nil)

		var granted []string
		f.roles.On("GrantRole", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) {
				granted = append(granted, args.Get(2).(string))
			}).
			Return(nil)

		resolved, err := f.linker.Resolve(ctx, auth.ProviderProfile{
			Provider:       auth.OAuthProviderGithub,
			ProviderUserID: "gh-7",
			Email:          "jane@example.com",
			Name:           "Jane Doe",
			AvatarURL:      "https://example.com/avatar.png",
			EmailVerified:  true,
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, created, resolved)
		assert.Equal(t, "jane@example.com", created.Email)
		assert.Equal(t, "jane-doe", created.Slug)
		assert.True(t, created.Active)

		// Exactly the base role plus email-verified, nothing else.
		assert.ElementsMatch(t, []string{auth.RoleUser, auth.RoleEmailVerified}, granted)
	})

	t.Run("slug collision appends a suffix", func(t *testing.T) {
		t.Parallel()

		f := newLinkerFixture()
		f.logins.On("GetLogin", ctx, auth.OAuthProviderGithub, "gh-8").Return(nil, auth.ErrLoginNotFound)
		f.users.On("GetUserByEmail", ctx, "jane@example.com").Return(nil, auth.ErrUserNotFound)
		f.users.On("SlugExists", ctx, "jane-doe").Return(true, nil)
		f.users.On("SlugExists", ctx, "jane-doe-1").Return(false, nil)

		var created *auth.User
		f.users.On("CreateUser", ctx, mock.AnythingOfType("*auth.User")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*auth.User)
			}).
			Return(nil)
		f.logins.On("CreateLogin", ctx, mock.Anything).Return(nil)
		f.profiles.On("CreateProfile", ctx, mock.Anything).Return(nil)
		f.prefs.On("CreatePreferences", ctx, mock.Anything).Return(nil)
		f.roles.On("GrantRole", ctx, mock.Anything, mock.Anything).Return(nil)

		_, err := f.linker.Resolve(ctx, auth.ProviderProfile{
			Provider:       auth.OAuthProviderGithub,
			ProviderUserID: "gh-8",
			Email:          "jane@example.com",
			Name:           "Jane Doe",
			EmailVerified:  true,
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "jane-doe-1", created.Slug)
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()

		f := newLinkerFixture()
		f.logins.On("GetLogin", ctx, auth.OAuthProviderGithub, "gh-9").Return(nil, auth.ErrLoginNotFound)

		_, err := f.linker.Resolve(ctx, auth.ProviderProfile{
			Provider:       auth.OAuthProviderGithub,
			ProviderUserID: "gh-9",
			EmailVerified:  true,
		})
		assert.ErrorIs(t, err, auth.ErrNoPrimaryEmail)
	})

	t.Run("cleans up when a creation step fails", func(t *testing.T) {
		t.Parallel()

		f := newLinkerFixture()
		f.logins.On("GetLogin", ctx, auth.OAuthProviderGithub, "gh-10").Return(nil, auth.ErrLoginNotFound)
		f.users.On("GetUserByEmail", ctx, "jane@example.com").Return(nil, auth.ErrUserNotFound)
		f.users.On("SlugExists", ctx, mock.AnythingOfType("string")).Return(false, nil)
		f.users.On("CreateUser", ctx, mock.AnythingOfType("*auth.User")).Return(nil)
		f.logins.On("CreateLogin", ctx, mock.AnythingOfType("*auth.ExternalLogin")).Return(nil)
		f.profiles.On("CreateProfile", ctx, mock.AnythingOfType("*auth.Profile")).Return(assert.AnError)
		f.users.On("DeleteUser", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)

		_, err := f.linker.Resolve(ctx, auth.ProviderProfile{
			Provider:       auth.OAuthProviderGithub,
			ProviderUserID: "gh-10",
			Email:          "jane@example.com",
			Name:           "Jane Doe",
			EmailVerified:  true,
		})
		require.Error(t, err)

		// No user row survives a partial creation.
		f.users.AssertCalled(t, "DeleteUser", ctx, mock.AnythingOfType("uuid.UUID"))
		f.roles.AssertNotCalled(t, "GrantRole", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOAuthLinkerUnverifiedEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rejected before any lookup", func(t *testing.T) {
		t.Parallel()

		f := newLinkerFixture()

		_, err := f.linker.Resolve(ctx, auth.ProviderProfile{
			Provider:       auth.OAuthProviderGoogle,
			ProviderUserID: "g-666",
			Email:          "victim@example.com",
		})
		assert.ErrorIs(t, err, auth.ErrUnverifiedEmail)

		// Neither linking nor account creation happened.
		f.logins.AssertNotCalled(t, "GetLogin", mock.Anything, mock.Anything, mock.Anything)
		f.logins.AssertNotCalled(t, "CreateLogin", mock.Anything, mock.Anything)
		f.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		f.roles.AssertNotCalled(t, "GrantRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("opt-out accepts unverified claims", func(t *testing.T) {
		t.Parallel()

		f := newLinkerFixture(auth.WithLinkerVerifiedOnly(false))
		user := &auth.User{ID: uuid.New(), Email: "user@example.com", Active: true}

		f.logins.On("GetLogin", ctx, auth.OAuthProviderGoogle, "g-123").Return(nil, auth.ErrLoginNotFound)
		f.users.On("GetUserByEmail", ctx, "user@example.com").Return(user, nil)
		f.logins.On("CreateLogin", ctx, mock.AnythingOfType("*auth.ExternalLogin")).Return(nil)
		f.roles.On("GrantRole", ctx, user.ID, auth.RoleEmailVerified).Return(nil)

		resolved, err := f.linker.Resolve(ctx, auth.ProviderProfile{
			Provider:       auth.OAuthProviderGoogle,
			ProviderUserID: "g-123",
			Email:          "user@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
	})
}

func TestProviderAdapterAuthURL(t *testing.T) {
	t.Parallel()

	t.Run("google", func(t *testing.T) {
		t.Parallel()

		adapter := auth.NewGoogleAdapter(auth.GoogleOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "https://app.example.com/callback",
			Scopes:       []string{"email"},
			StateTTL:     10 * time.Minute,
		})
		assert.Equal(t, auth.OAuthProviderGoogle, adapter.ProviderID())

		url, err := adapter.AuthURL("state-token")
		require.NoError(t, err)
		assert.Contains(t, url, "state=state-token")
		assert.Contains(t, url, "client_id=client-id")
	})

	t.Run("github", func(t *testing.T) {
		t.Parallel()

		adapter := auth.NewGitHubAdapter(auth.GitHubOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "https://app.example.com/callback",
			Scopes:       []string{"user:email"},
			StateTTL:     10 * time.Minute,
		})
		assert.Equal(t, auth.OAuthProviderGithub, adapter.ProviderID())

		url, err := adapter.AuthURL("state-token")
		require.NoError(t, err)
		assert.Contains(t, url, "state=state-token")
	})
}
