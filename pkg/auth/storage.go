package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository persists identity records. Lookups return ErrUserNotFound
// when no row matches; any other error is a storage failure.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// CredentialsRepository persists password hashes, 1:1 with users. A user
// without a row is OAuth-only.
type CredentialsRepository interface {
	StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error
	GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// RefreshTokenRepository persists session tokens keyed by their SHA-256 hex
// digest.
//
// ReplaceToken deletes the row identified by oldHash and inserts next within
// a single transaction. It returns ErrTokenNotFound when oldHash no longer
// exists, which is how exactly one of two concurrent rotations of the same
// token wins.
type RefreshTokenRepository interface {
	CreateToken(ctx context.Context, token *RefreshToken) error
	GetToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	ReplaceToken(ctx context.Context, oldHash string, next *RefreshToken) error
	DeleteToken(ctx context.Context, tokenHash string) error
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) error
}

// ExternalLoginRepository persists provider identity links. GetLogin returns
// ErrLoginNotFound when the (provider, providerUserID) pair is unknown.
type ExternalLoginRepository interface {
	CreateLogin(ctx context.Context, login *ExternalLogin) error
	GetLogin(ctx context.Context, provider, providerUserID string) (*ExternalLogin, error)
	ListUserLogins(ctx context.Context, userID uuid.UUID) ([]ExternalLogin, error)
}

// ProfileRepository persists presentation profiles, 1:1 with users.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) error
}

// PreferencesRepository persists per-user settings, 1:1 with users.
type PreferencesRepository interface {
	CreatePreferences(ctx context.Context, prefs *Preferences) error
	GetPreferences(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	UpdatePreferences(ctx context.Context, prefs *Preferences) error
}

// PasswordResetTokenRepository persists reset tokens keyed by their SHA-256
// hex digest. GetActiveToken filters server-side: it returns a row only when
// it is unexpired and unused as of now, and ErrTokenNotFound otherwise.
type PasswordResetTokenRepository interface {
	CreateToken(ctx context.Context, token *PasswordResetToken) error
	GetActiveToken(ctx context.Context, tokenHash string, now time.Time) (*PasswordResetToken, error)
	MarkTokenUsed(ctx context.Context, tokenHash string, usedAt time.Time) error
}

// RoleRepository persists role assignments.
//
// GrantRole is idempotent. RevokeAdminRole counts current admins and removes
// the assignment within one consistent view, returning ErrLastAdmin when the
// target holds the only admin assignment system-wide.
type RoleRepository interface {
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	GrantRole(ctx context.Context, userID uuid.UUID, role string) error
	RevokeRole(ctx context.Context, userID uuid.UUID, role string) error
	RevokeAdminRole(ctx context.Context, userID uuid.UUID) error
}

// Repositories bundles every persistence dependency the auth components
// need. pkg/auth/pg provides implementations for all of them.
type Repositories struct {
	Users          UserRepository
	Credentials    CredentialsRepository
	RefreshTokens  RefreshTokenRepository
	ExternalLogins ExternalLoginRepository
	Profiles       ProfileRepository
	Preferences    PreferencesRepository
	ResetTokens    PasswordResetTokenRepository
	Roles          RoleRepository
}
