package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/sanitizer"
	"github.com/dmitrymomot/authkit/pkg/token"
	"github.com/dmitrymomot/authkit/pkg/validator"
)

// emailVerificationPayload is the compact signed token embedded in
// verification links.
type emailVerificationPayload struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Subject  string `json:"sub"`
	ExpireAt int64  `json:"exp"`
}

// Service orchestrates the auth components into the register, login,
// refresh, reset, and OAuth callback use cases.
type Service struct {
	repos  Repositories
	issuer *TokenIssuer
	tokens *RefreshTokenStore
	linker *OAuthLinker
	reset  *PasswordResetFlow

	adapters map[string]ProviderAdapter
	states   StateStore
	mailer   Mailer

	config           Config
	logger           *slog.Logger
	passwordStrength validator.PasswordStrengthConfig
	verifiedOnly     bool
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithLogger sets a custom logger, propagated to the composed components.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMailer enables verification and password reset emails.
func WithMailer(m Mailer) ServiceOption {
	return func(s *Service) {
		s.mailer = m
	}
}

// WithProvider registers an OAuth provider adapter under its ProviderID.
func WithProvider(adapter ProviderAdapter) ServiceOption {
	return func(s *Service) {
		s.adapters[adapter.ProviderID()] = adapter
	}
}

// WithStateStore sets the store for one-time OAuth CSRF state tokens.
// Required for any OAuth flow.
func WithStateStore(store StateStore) ServiceOption {
	return func(s *Service) {
		s.states = store
	}
}

// WithPasswordStrength sets custom password strength requirements.
func WithPasswordStrength(cfg validator.PasswordStrengthConfig) ServiceOption {
	return func(s *Service) {
		s.passwordStrength = cfg
	}
}

// WithVerifiedOnly controls whether OAuth claims require a provider-verified
// email. Enabled by default.
func WithVerifiedOnly(verifiedOnly bool) ServiceOption {
	return func(s *Service) {
		s.verifiedOnly = verifiedOnly
	}
}

// NewService composes the auth components over the repository bundle.
func NewService(repos Repositories, cfg Config, opts ...ServiceOption) (*Service, error) {
	cfg = cfg.withDefaults()

	issuer, err := NewTokenIssuer(cfg.SigningKey, WithAccessTokenTTL(cfg.AccessTokenTTL))
	if err != nil {
		return nil, err
	}
	if cfg.VerificationSecret == "" {
		return nil, ErrMissingSigningKey
	}

	s := &Service{
		repos:            repos,
		issuer:           issuer,
		adapters:         make(map[string]ProviderAdapter),
		config:           cfg,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		passwordStrength: validator.DefaultPasswordStrength(),
		verifiedOnly:     true,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tokens = NewRefreshTokenStore(repos.RefreshTokens, repos.Users, repos.Roles, issuer,
		WithRefreshLogger(s.logger),
		WithRefreshTokenMaxAge(cfg.RefreshTokenMaxAge),
	)
	s.linker = NewOAuthLinker(repos.Users, repos.ExternalLogins, repos.Profiles, repos.Preferences, repos.Roles,
		WithLinkerLogger(s.logger),
		WithLinkerVerifiedOnly(s.verifiedOnly),
	)
	s.reset = NewPasswordResetFlow(repos.Users, repos.Credentials, repos.ResetTokens, s.tokens, s.mailer,
		WithResetLogger(s.logger),
		WithResetTokenTTL(cfg.ResetTokenTTL),
		WithResetBcryptCost(cfg.BcryptCost),
		WithResetPasswordStrength(s.passwordStrength),
	)

	return s, nil
}

// RegisterParams carries the registration input. ExtendedSession selects the
// 30 day refresh token policy instead of the default 7 days.
type RegisterParams struct {
	Email           string
	Password        string
	DisplayName     string
	Device          string
	ExtendedSession bool
}

// LoginParams carries the login input.
type LoginParams struct {
	Email           string
	Password        string
	Device          string
	ExtendedSession bool
}

// Register creates a password-based account and opens its first session.
// A verification email is sent when a mailer is configured; its failure is
// logged but does not fail the registration.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	email := sanitizer.NormalizeEmail(params.Email)
	displayName := sanitizer.SingleLine(params.DisplayName)
	if displayName == "" {
		displayName = sanitizer.EmailLocalPart(email)
	}

	if err := validator.Apply(
		validator.ValidEmail("email", email),
		validator.StrongPassword("password", params.Password, s.passwordStrength),
		validator.NotCommonPassword("password", params.Password),
	); err != nil {
		return nil, err
	}

	if _, err := s.repos.Users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userSlug, err := uniqueSlug(ctx, s.repos.Users, displayName, sanitizer.EmailLocalPart(email))
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

	if err := s.repos.Users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.repos.Credentials.StorePasswordHash(ctx, user.ID, hash); err != nil {
		s.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to save password: %w", err)
	}
	if err := s.repos.Preferences.CreatePreferences(ctx, DefaultPreferences(user.ID)); err != nil {
		s.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to create preferences: %w", err)
	}
	if err := s.repos.Profiles.CreateProfile(ctx, &Profile{UserID: user.ID, UpdatedAt: now}); err != nil {
		s.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	if err := s.repos.Roles.GrantRole(ctx, user.ID, RoleUser); err != nil {
		s.discardUser(ctx, user.ID)
		return nil, fmt.Errorf("failed to grant role: %w", err)
	}

	if s.mailer != nil {
		if err := s.sendVerificationEmail(ctx, user); err != nil {
			s.logger.Error("failed to send verification email",
				logger.UserID(user.ID.String()),
				logger.Error(err),
				logger.Component("service"),
			)
		}
	}

	return s.openSession(ctx, user, params.Device, params.ExtendedSession)
}

// Login verifies email and password and opens a session. Unknown email,
// OAuth-only account, inactive account, and wrong password all fail with
// the same ErrInvalidCredentials to prevent account enumeration.
func (s *Service) Login(ctx context.Context, params LoginParams) (*Session, error) {
	email := sanitizer.NormalizeEmail(params.Email)

	user, err := s.repos.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.repos.Credentials.GetPasswordHash(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrCredentialsNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(params.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user, params.Device, params.ExtendedSession)
}

// Refresh rotates the presented refresh token into a fresh session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return s.tokens.Rotate(ctx, refreshToken)
}

// Revoke deletes the presented refresh token; it reports whether a row was
// removed.
func (s *Service) Revoke(ctx context.Context, refreshToken string) (bool, error) {
	return s.tokens.Revoke(ctx, refreshToken)
}

// RevokeAll deletes every refresh token of the user.
func (s *Service) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.RevokeAll(ctx, userID)
}

// RequestPasswordReset issues a reset token and emails it. The response is
// identical whether or not the email is registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	return s.reset.Request(ctx, email)
}

// ResetPassword redeems a reset token and revokes every session of the
// user.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	return s.reset.Redeem(ctx, resetToken, newPassword)
}

// ChangePassword replaces the password after verifying the current one and
// revokes every session of the user.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	if err := validator.Apply(
		validator.StrongPassword("password", newPassword, s.passwordStrength),
		validator.NotCommonPassword("password", newPassword),
	); err != nil {
		return err
	}

	hash, err := s.repos.Credentials.GetPasswordHash(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCredentialsNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repos.Credentials.StorePasswordHash(ctx, userID, newHash); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}

	return s.tokens.RevokeAll(ctx, userID)
}

// VerifyEmail consumes a verification link token and grants the
// email-verified role.
func (s *Service) VerifyEmail(ctx context.Context, verificationToken string) error {
	payload, err := token.ParseToken[emailVerificationPayload](verificationToken, s.config.VerificationSecret)
	if err != nil {
		return ErrTokenInvalid
	}
	if payload.Subject != SubjectEmailVerify {
		return ErrTokenInvalid
	}
	if time.Now().Unix() > payload.ExpireAt {
		return ErrTokenExpired
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return ErrTokenInvalid
	}

	user, err := s.repos.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	// A token issued for a previous address must not verify the current one.
	if user.Email != payload.Email {
		return ErrTokenInvalid
	}

	if err := s.repos.Roles.GrantRole(ctx, user.ID, RoleEmailVerified); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}

	return nil
}

// DeactivateUser flips the active flag and revokes every session. An
// inactive user fails login, refresh, and OAuth resolution uniformly.
func (s *Service) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repos.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Active {
		user.Active = false
		user.UpdatedAt = time.Now()
		if err := s.repos.Users.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to deactivate user: %w", err)
		}
	}
	return s.tokens.RevokeAll(ctx, userID)
}

// OAuthURL generates the provider authorization URL with a one-time CSRF
// state token.
func (s *Service) OAuthURL(ctx context.Context, provider string) (string, error) {
	adapter, ok := s.adapters[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if s.states == nil {
		return "", ErrStateStoreMissing
	}

	state, err := generateState()
	if err != nil {
		return "", err
	}
	if err := s.states.Store(ctx, state, s.config.StateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return adapter.AuthURL(state)
}

// OAuthCallback consumes the redirect state, resolves provider claims, maps
// them to a local user, and opens a session.
func (s *Service) OAuthCallback(ctx context.Context, provider, state, code string) (*Session, error) {
	adapter, ok := s.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if s.states == nil {
		return nil, ErrStateStoreMissing
	}

	if err := s.states.Consume(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("failed to consume state: %w", err)
	}

	claims, err := adapter.ResolveProfile(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.linker.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, user, "", false)
}

// discardUser removes a half-created account so a retry with the same email
// succeeds and no user row survives without the base role. Dependent rows go
// with it through the schema's cascades.
func (s *Service) discardUser(ctx context.Context, userID uuid.UUID) {
	if err := s.repos.Users.DeleteUser(ctx, userID); err != nil {
		s.logger.Error("failed to clean up partially created user",
			logger.UserID(userID.String()),
			logger.Error(err),
			logger.Component("service"),
		)
	}
}

// openSession resolves roles and mints the access/refresh pair for a user.
func (s *Service) openSession(ctx context.Context, user *User, device string, extended bool) (*Session, error) {
	roles, err := s.repos.Roles.GetUserRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	accessToken, expiresAt, err := s.issuer.Issue(user, roles)
	if err != nil {
		return nil, err
	}

	ttl := s.config.RefreshTokenTTL
	if extended {
		ttl = s.config.ExtendedRefreshTTL
	}
	refreshToken, err := s.tokens.Issue(ctx, user.ID, device, ttl)
	if err != nil {
		return nil, err
	}

	return &Session{
		User:         user,
		Roles:        roles,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// sendVerificationEmail issues a compact signed token and hands it to the
// mailer.
func (s *Service) sendVerificationEmail(ctx context.Context, user *User) error {
	verificationToken, err := token.GenerateToken(emailVerificationPayload{
		UserID:   user.ID.String(),
		Email:    user.Email,
		Subject:  SubjectEmailVerify,
		ExpireAt: time.Now().Add(VerificationTokenTTL).Unix(),
	}, s.config.VerificationSecret)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	return s.mailer.SendVerificationEmail(ctx, user.Email, verificationToken)
}

// generateState returns a URL-safe random state token for the OAuth
// redirect round trip.
func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
