package auth

import "errors"

// General authentication errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCredentialsNotFound = errors.New("credentials not found")
)

// Token-related errors
var (
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
)

// Role management errors
var (
	ErrInvalidRole   = errors.New("invalid role")
	ErrImmutableRole = errors.New("role cannot be modified")
	ErrLastAdmin     = errors.New("cannot remove the last admin")
)

// OAuth-specific errors
var (
	ErrLoginNotFound   = errors.New("no external login found")
	ErrStateNotFound   = errors.New("OAuth state not found or expired")
	ErrInvalidState    = errors.New("invalid OAuth state")
	ErrInvalidCode     = errors.New("invalid OAuth code")
	ErrNoPrimaryEmail  = errors.New("no primary email from provider")
	ErrUnverifiedEmail = errors.New("provider email not verified")
	ErrUnknownProvider = errors.New("unknown OAuth provider")
)

// Profile and preferences errors
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrPreferencesNotFound = errors.New("preferences not found")
)

// Configuration and orchestration errors
var (
	ErrMissingSigningKey   = errors.New("missing signing key")
	ErrMailerNotConfigured = errors.New("mailer not configured")
	ErrStateStoreMissing   = errors.New("state store not configured")
	ErrSlugExhausted       = errors.New("could not generate a unique slug")
)
