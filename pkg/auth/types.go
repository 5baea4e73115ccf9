package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role vocabulary. The set is closed: role mutation rejects anything outside
// it. RoleUser is assigned exactly once at account creation and is immutable
// thereafter.
const (
	RoleUser           = "user"
	RoleEmailVerified  = "email-verified"
	RoleTrustedContact = "trusted-contact"
	RoleAdmin          = "admin"
)

// IsValidRole reports whether role belongs to the fixed vocabulary.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleEmailVerified, RoleTrustedContact, RoleAdmin:
		return true
	}
	return false
}

// OAuth provider identifiers.
const (
	OAuthProviderGoogle = "google"
	OAuthProviderGithub = "github"
)

// Token lifetime defaults. RefreshTokenMaxAge is an absolute ceiling measured
// against each token row's own creation time: rotation refuses tokens older
// than this regardless of their expiry.
const (
	AccessTokenTTL          = time.Hour
	RefreshTokenTTL         = 7 * 24 * time.Hour
	ExtendedRefreshTokenTTL = 30 * 24 * time.Hour
	RefreshTokenMaxAge      = 180 * 24 * time.Hour
	ResetTokenTTL           = time.Hour
	VerificationTokenTTL    = 24 * time.Hour
)

// Token subjects for compact signed tokens (email links).
const (
	SubjectEmailVerify = "email_verify"
)

// User represents an identity record. RealName is provider-sourced and
// auto-updated on linked OAuth logins; DisplayName is user-controlled and
// seeds the slug.
type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Slug        string
	RealName    *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExternalLogin links a local user to a third-party identity. The
// (Provider, ProviderUserID) pair resolves to at most one user.
type ExternalLogin struct {
	UserID         uuid.UUID
	Provider       string
	ProviderUserID string
	LinkedAt       time.Time
}

// RefreshToken is the persisted form of a session token. Only the SHA-256
// hex digest of the plaintext is stored.
type RefreshToken struct {
	TokenHash  string
	UserID     uuid.UUID
	Device     string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// PasswordResetToken is the persisted form of a reset token. UsedAt is nil
// until redeemed; once set the token is permanently invalid.
type PasswordResetToken struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
	UsedAt    *time.Time
}

// Profile holds presentation fields updated opportunistically from provider
// data on linked logins.
type Profile struct {
	UserID    uuid.UUID
	AvatarURL string
	Bio       string
	UpdatedAt time.Time
}

// Preferences holds per-user settings created with defaults at registration.
type Preferences struct {
	UserID     uuid.UUID
	Theme      string
	Locale     string
	Newsletter bool
	UpdatedAt  time.Time
}

// DefaultPreferences returns the preference row created for new users.
func DefaultPreferences(userID uuid.UUID) *Preferences {
	return &Preferences{
		UserID:    userID,
		Theme:     "system",
		Locale:    "en",
		UpdatedAt: time.Now(),
	}
}

// Session is the response DTO for every flow that establishes a session.
// RefreshToken carries the plaintext opaque token; it is never retrievable
// again after this value is returned.
type Session struct {
	User         *User
	Roles        []string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
