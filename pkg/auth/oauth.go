package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/sanitizer"
	"github.com/dmitrymomot/authkit/pkg/slug"
)

// ProviderProfile carries the verified identity claims resolved from a
// third-party provider after code exchange.
type ProviderProfile struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	EmailVerified  bool
}

// ProviderAdapter abstracts a single OAuth provider. Implementations
// exchange authorization codes for identity claims; the core flow never
// sees provider-specific wire formats.
type ProviderAdapter interface {
	ProviderID() string
	AuthURL(state string) (string, error)
	ResolveProfile(ctx context.Context, code string) (ProviderProfile, error)
}

// StateStore persists one-time CSRF state tokens for the OAuth redirect
// round trip. Consume removes the state atomically and returns
// ErrStateNotFound when it is unknown or expired; a state can therefore be
// consumed at most once. pkg/auth/statestore provides implementations.
type StateStore interface {
	Store(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) error
}

// OAuthLinker reconciles provider identity claims with local accounts.
//
// The decision order is: known external login is a pure login; an email
// match links the provider identity to the existing account and grants the
// email-verified role, trusting the provider's own verification; otherwise
// a new account is created. The email-match branch links without requiring
// the local account to be verified first, but claims whose email the
// provider itself has not verified are rejected outright unless
// WithLinkerVerifiedOnly(false) is set.
type OAuthLinker struct {
	users    UserRepository
	logins   ExternalLoginRepository
	profiles ProfileRepository
	prefs    PreferencesRepository
	roles    RoleRepository

	logger       *slog.Logger
	verifiedOnly bool
}

// LinkerOption configures an OAuthLinker during construction.
type LinkerOption func(*OAuthLinker)

// WithLinkerLogger sets a custom logger for the linker.
func WithLinkerLogger(l *slog.Logger) LinkerOption {
	return func(lk *OAuthLinker) {
		lk.logger = l
	}
}

// WithLinkerVerifiedOnly controls whether claims require a provider-verified
// email. Enabled by default; disabling it opens the email-match branch to
// account takeover through an unverified address.
func WithLinkerVerifiedOnly(verifiedOnly bool) LinkerOption {
	return func(lk *OAuthLinker) {
		lk.verifiedOnly = verifiedOnly
	}
}

// NewOAuthLinker creates a linker over the identity repositories.
func NewOAuthLinker(
	users UserRepository,
	logins ExternalLoginRepository,
	profiles ProfileRepository,
	prefs PreferencesRepository,
	roles RoleRepository,
	opts ...LinkerOption,
) *OAuthLinker {
	lk := &OAuthLinker{
		users:        users,
		logins:       logins,
		profiles:     profiles,
		prefs:        prefs,
		roles:        roles,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		verifiedOnly: true,
	}
	for _, opt := range opts {
		opt(lk)
	}
	return lk
}

// Resolve maps provider claims to a local user, linking or creating as
// needed, and returns the user to issue session tokens for.
func (lk *OAuthLinker) Resolve(ctx context.Context, claims ProviderProfile) (*User, error) {
	// An unverified provider email must not link to or create an account.
	if lk.verifiedOnly && !claims.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	login, err := lk.logins.GetLogin(ctx, claims.Provider, claims.ProviderUserID)
	if err == nil {
		return lk.knownLogin(ctx, login)
	}
	if !errors.Is(err, ErrLoginNotFound) {
		return nil, fmt.Errorf("failed to look up external login: %w", err)
	}

	email := sanitizer.NormalizeEmail(claims.Email)
	if email == "" {
		return nil, ErrNoPrimaryEmail
	}

	user, err := lk.users.GetUserByEmail(ctx, email)
	if err == nil {
		return lk.linkToExisting(ctx, user, claims)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	return lk.createFromClaims(ctx, email, claims)
}

// knownLogin handles the pure-login branch: the provider identity already
// maps to a user and nothing is mutated.
func (lk *OAuthLinker) knownLogin(ctx context.Context, login *ExternalLogin) (*User, error) {
	user, err := lk.users.GetUserByID(ctx, login.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked user: %w", err)
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// linkToExisting attaches the provider identity to a local account sharing
// the claimed email. Profile fields are updated opportunistically and the
// email-verified role is granted: the provider's verification of the
// address is treated as authoritative.
func (lk *OAuthLinker) linkToExisting(ctx context.Context, user *User, claims ProviderProfile) (*User, error) {
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if err := lk.logins.CreateLogin(ctx, &ExternalLogin{
		UserID:         user.ID,
		Provider:       claims.Provider,
		ProviderUserID: claims.ProviderUserID,
		LinkedAt:       time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to link external login: %w", err)
	}

	if claims.Name != "" && (user.RealName == nil || *user.RealName != claims.Name) {
		name := claims.Name
		user.RealName = &name
		user.UpdatedAt = time.Now()
		if err := lk.users.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	lk.updateAvatar(ctx, user.ID, claims.AvatarURL)

	if err := lk.roles.GrantRole(ctx, user.ID, RoleEmailVerified); err != nil {
		return nil, fmt.Errorf("failed to grant role: %w", err)
	}

	lk.logger.Info("external login linked to existing account",
		logger.UserID(user.ID.String()),
		logger.Provider(claims.Provider),
		logger.Component("oauth"),
	)

	return user, nil
}

// createFromClaims handles the no-match branch: a fresh account with a
// unique slug, an external login row, an empty profile, default
// preferences, and roles {user, email-verified}.
func (lk *OAuthLinker) createFromClaims(ctx context.Context, email string, claims ProviderProfile) (*User, error) {
	displayName := claims.Name
	if displayName == "" {
		displayName = sanitizer.EmailLocalPart(email)
	}

	userSlug, err := uniqueSlug(ctx, lk.users, displayName, sanitizer.EmailLocalPart(email))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		Slug:        userSlug,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if claims.Name != "" {
		name := claims.Name
		user.RealName = &name
	}

	if err := lk.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := lk.logins.CreateLogin(ctx, &ExternalLogin{
		UserID:         user.ID,
		Provider:       claims.Provider,
		ProviderUserID: claims.ProviderUserID,
		LinkedAt:       now,
	}); err != nil {
		lk.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to create external login: %w", err)
	}
	if err := lk.profiles.CreateProfile(ctx, &Profile{
		UserID:    user.ID,
		AvatarURL: claims.AvatarURL,
		UpdatedAt: now,
	}); err != nil {
		lk.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	if err := lk.prefs.CreatePreferences(ctx, DefaultPreferences(user.ID)); err != nil {
		lk.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to create preferences: %w", err)
	}
	if err := lk.roles.GrantRole(ctx, user.ID, RoleUser); err != nil {
		lk.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to grant role: %w", err)
	}
	if err := lk.roles.GrantRole(ctx, user.ID, RoleEmailVerified); err != nil {
		lk.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to grant role: %w", err)
	}

	lk.logger.Info("user created from provider claims",
		logger.UserID(user.ID.String()),
		logger.Provider(claims.Provider),
		logger.Component("oauth"),
	)

	return user, nil
}

// discardUser removes a half-created account after a failed creation step,
// so no user row survives without the base role. Dependent rows go with it
// through the schema's cascades.
func (lk *OAuthLinker) discardUser(ctx context.Context, userID uuid.UUID) {
	if err := lk.users.DeleteUser(ctx, userID); err != nil {
		lk.logger.Error("failed to clean up partially created user",
			logger.UserID(userID.String()),
			logger.Error(err),
			logger.Component("oauth"),
		)
	}
}

// updateAvatar refreshes the stored avatar from provider data. A missing
// profile row is created instead. Failures are logged, not returned: the
// login must not fail over a cosmetic update.
func (lk *OAuthLinker) updateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) {
	if avatarURL == "" {
		return
	}

	profile, err := lk.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		if profile.AvatarURL == avatarURL {
			return
		}
		profile.AvatarURL = avatarURL
		profile.UpdatedAt = time.Now()
		err = lk.profiles.UpdateProfile(ctx, profile)
	case errors.Is(err, ErrProfileNotFound):
		err = lk.profiles.CreateProfile(ctx, &Profile{
			UserID:    userID,
			AvatarURL: avatarURL,
			UpdatedAt: time.Now(),
		})
	}
	if err != nil {
		lk.logger.Error("failed to update avatar from provider",
			logger.UserID(userID.String()),
			logger.Error(err),
			logger.Component("oauth"),
		)
	}
}

// maxSlugAttempts caps the collision-suffix loop in uniqueSlug.
const maxSlugAttempts = 50

// uniqueSlug derives a URL-safe slug from base, falling back to fallback
// when base yields nothing usable, and appends -1, -2, ... on collision.
func uniqueSlug(ctx context.Context, users UserRepository, base, fallback string) (string, error) {
	s := slug.Make(base)
	if s == "" {
		s = slug.Make(fallback)
	}
	if s == "" {
		s = "user"
	}

	for i := 0; i < maxSlugAttempts; i++ {
		candidate := s
		if i > 0 {
			candidate = s + "-" + strconv.Itoa(i)
		}

		exists, err := users.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", ErrSlugExhausted
}
