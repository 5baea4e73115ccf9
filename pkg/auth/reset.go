package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/sanitizer"
	"github.com/dmitrymomot/authkit/pkg/validator"
)

// PasswordResetFlow issues and redeems single-use, time-boxed reset tokens.
type PasswordResetFlow struct {
	users    UserRepository
	creds    CredentialsRepository
	resets   PasswordResetTokenRepository
	sessions *RefreshTokenStore
	mailer   Mailer

	logger           *slog.Logger
	ttl              time.Duration
	bcryptCost       int
	passwordStrength validator.PasswordStrengthConfig
}

// ResetOption configures a PasswordResetFlow during construction.
type ResetOption func(*PasswordResetFlow)

// WithResetLogger sets a custom logger for the flow.
func WithResetLogger(l *slog.Logger) ResetOption {
	return func(f *PasswordResetFlow) {
		f.logger = l
	}
}

// WithResetTokenTTL overrides the default one hour token lifetime.
func WithResetTokenTTL(ttl time.Duration) ResetOption {
	return func(f *PasswordResetFlow) {
		f.ttl = ttl
	}
}

// WithResetBcryptCost sets the bcrypt cost used when storing the new
// password.
func WithResetBcryptCost(cost int) ResetOption {
	return func(f *PasswordResetFlow) {
		f.bcryptCost = cost
	}
}

// WithResetPasswordStrength sets custom password strength requirements.
func WithResetPasswordStrength(cfg validator.PasswordStrengthConfig) ResetOption {
	return func(f *PasswordResetFlow) {
		f.passwordStrength = cfg
	}
}

// NewPasswordResetFlow creates a reset flow. The refresh token store is
// required because a successful redemption revokes every session of the
// user. The mailer may be nil, in which case Request fails with
// ErrMailerNotConfigured.
func NewPasswordResetFlow(
	users UserRepository,
	creds CredentialsRepository,
	resets PasswordResetTokenRepository,
	sessions *RefreshTokenStore,
	mailer Mailer,
	opts ...ResetOption,
) *PasswordResetFlow {
	f := &PasswordResetFlow{
		users:            users,
		creds:            creds,
		resets:           resets,
		sessions:         sessions,
		mailer:           mailer,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		ttl:              ResetTokenTTL,
		bcryptCost:       bcrypt.DefaultCost,
		passwordStrength: validator.DefaultPasswordStrength(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Request issues a reset token and emails it to the address. The outcome is
// identical whether or not the email is registered: an unknown address
// returns nil without sending anything, so the response cannot be used to
// probe for accounts. Only infrastructure failures surface as errors.
func (f *PasswordResetFlow) Request(ctx context.Context, email string) error {
	if f.mailer == nil {
		return ErrMailerNotConfigured
	}

	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(validator.ValidEmail("email", email)); err != nil {
		return err
	}

	user, err := f.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	plaintext, err := generateOpaqueToken()
	if err != nil {
		return err
	}

	now := time.Now()
	if err := f.resets.CreateToken(ctx, &PasswordResetToken{
		TokenHash: HashToken(plaintext),
		UserID:    user.ID,
		ExpiresAt: now.Add(f.ttl),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := f.mailer.SendPasswordResetEmail(ctx, user.Email, plaintext); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	f.logger.Info("password reset requested",
		logger.UserID(user.ID.String()),
		logger.Component("reset"),
	)

	return nil
}

// Redeem consumes a reset token and sets a new password. The repository
// filters expired and already-used rows server-side, so every invalid token
// fails with the same ErrResetTokenInvalid. The token is claimed before the
// credential changes: the conditional mark-used update is the single-use
// guard, and a concurrent redemption loses there without having written a
// password. On success all refresh tokens of the user are revoked, forcing
// re-login everywhere.
func (f *PasswordResetFlow) Redeem(ctx context.Context, token, newPassword string) error {
	if err := validator.Apply(
		validator.StrongPassword("password", newPassword, f.passwordStrength),
		validator.NotCommonPassword("password", newPassword),
	); err != nil {
		return err
	}

	now := time.Now()

	row, err := f.resets.GetActiveToken(ctx, HashToken(token), now)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if err := f.resets.MarkTokenUsed(ctx, row.TokenHash, now); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to claim reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), f.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := f.creds.StorePasswordHash(ctx, row.UserID, hash); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}

	if err := f.sessions.RevokeAll(ctx, row.UserID); err != nil {
		return err
	}

	f.logger.Info("password reset redeemed",
		logger.UserID(row.UserID.String()),
		logger.Component("reset"),
	)

	return nil
}
