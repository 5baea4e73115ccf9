package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// HashToken returns the SHA-256 hex digest under which an opaque token is
// stored. Plaintext tokens never reach the repository layer.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// generateOpaqueToken returns 32 bytes of cryptographically secure
// randomness as 64 lowercase hex characters.
func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RefreshTokenStore manages opaque rotating session tokens. Tokens are
// one-time-use: Rotate atomically replaces the presented row, so a rotated
// token can never succeed a second rotation even under concurrent duplicate
// requests.
type RefreshTokenStore struct {
	tokens RefreshTokenRepository
	users  UserRepository
	roles  RoleRepository
	issuer *TokenIssuer
	logger *slog.Logger
	maxAge time.Duration
}

// RefreshOption configures a RefreshTokenStore during construction.
type RefreshOption func(*RefreshTokenStore)

// WithRefreshLogger sets a custom logger for the store.
func WithRefreshLogger(l *slog.Logger) RefreshOption {
	return func(s *RefreshTokenStore) {
		s.logger = l
	}
}

// WithRefreshTokenMaxAge overrides the 180 day absolute age ceiling.
func WithRefreshTokenMaxAge(maxAge time.Duration) RefreshOption {
	return func(s *RefreshTokenStore) {
		s.maxAge = maxAge
	}
}

// NewRefreshTokenStore creates a refresh token store. The user and role
// repositories are needed because rotation mints a fresh access token for
// the session's user.
func NewRefreshTokenStore(
	tokens RefreshTokenRepository,
	users UserRepository,
	roles RoleRepository,
	issuer *TokenIssuer,
	opts ...RefreshOption,
) *RefreshTokenStore {
	s := &RefreshTokenStore{
		tokens: tokens,
		users:  users,
		roles:  roles,
		issuer: issuer,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxAge: RefreshTokenMaxAge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a new refresh token for the user and persists its hash
// with expiry = now + ttl. Callers pick the policy explicitly, typically
// RefreshTokenTTL or ExtendedRefreshTokenTTL. The plaintext is returned
// exactly once and is never retrievable again.
func (s *RefreshTokenStore) Issue(ctx context.Context, userID uuid.UUID, device string, ttl time.Duration) (string, error) {
	plaintext, err := generateOpaqueToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	if err := s.tokens.CreateToken(ctx, &RefreshToken{
		TokenHash:  HashToken(plaintext),
		UserID:     userID,
		Device:     device,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		LastUsedAt: now,
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return plaintext, nil
}

// Rotate exchanges a presented refresh token for a fresh access/refresh
// pair. Every failure path returns ErrTokenNotFound so callers cannot
// distinguish unknown, expired, and over-ceiling tokens.
//
// The new token carries forward the old row's device metadata and TTL
// policy (expiry minus creation), but its age ceiling restarts: the 180 day
// limit applies to each token row's own creation time.
func (s *RefreshTokenStore) Rotate(ctx context.Context, presented string) (*Session, error) {
	oldHash := HashToken(presented)

	row, err := s.tokens.GetToken(ctx, oldHash)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	now := time.Now()

	// Hard session death past the absolute ceiling, regardless of activity.
	if now.Sub(row.CreatedAt) > s.maxAge {
		s.deleteStale(ctx, oldHash, "over age ceiling")
		return nil, ErrTokenNotFound
	}
	if now.After(row.ExpiresAt) {
		s.deleteStale(ctx, oldHash, "expired")
		return nil, ErrTokenNotFound
	}

	user, err := s.users.GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.deleteStale(ctx, oldHash, "user gone")
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		return nil, ErrTokenNotFound
	}

	userRoles, err := s.roles.GetUserRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	accessToken, expiresAt, err := s.issuer.Issue(user, userRoles)
	if err != nil {
		return nil, err
	}

	plaintext, err := generateOpaqueToken()
	if err != nil {
		return nil, err
	}

	next := &RefreshToken{
		TokenHash:  HashToken(plaintext),
		UserID:     row.UserID,
		Device:     row.Device,
		ExpiresAt:  now.Add(row.ExpiresAt.Sub(row.CreatedAt)),
		CreatedAt:  now,
		LastUsedAt: now,
	}

	// Atomic delete-old + insert-new. If a concurrent rotation already
	// consumed the row, this loses the race and reports not found.
	if err := s.tokens.ReplaceToken(ctx, oldHash, next); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			s.logger.Warn("refresh token rotation race lost, possible token replay",
				logger.UserID(row.UserID.String()),
				logger.Component("refresh"),
			)
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return &Session{
		User:         user,
		Roles:        userRoles,
		AccessToken:  accessToken,
		RefreshToken: plaintext,
		ExpiresAt:    expiresAt,
	}, nil
}

// Revoke deletes the presented token. It reports whether a row was removed.
func (s *RefreshTokenStore) Revoke(ctx context.Context, presented string) (bool, error) {
	err := s.tokens.DeleteToken(ctx, HashToken(presented))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return true, nil
}

// RevokeAll deletes every refresh token of the user. Used on password
// change, password reset redemption, and account deactivation.
func (s *RefreshTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokens.DeleteUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// deleteStale removes a token row that can never rotate again. Failures are
// logged, not returned: the caller's outcome is already decided.
func (s *RefreshTokenStore) deleteStale(ctx context.Context, tokenHash, reason string) {
	if err := s.tokens.DeleteToken(ctx, tokenHash); err != nil && !errors.Is(err, ErrTokenNotFound) {
		s.logger.Error("failed to delete stale refresh token",
			slog.String("reason", reason),
			logger.Error(err),
			logger.Component("refresh"),
		)
	}
}
