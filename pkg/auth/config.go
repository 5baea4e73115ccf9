package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds the auth subsystem configuration. The signing key and the
// verification secret are independent so rotating one does not invalidate
// artifacts of the other.
type Config struct {
	SigningKey         string        `env:"AUTH_JWT_SIGNING_KEY,required"`
	VerificationSecret string        `env:"AUTH_VERIFICATION_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL    time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`
	ExtendedRefreshTTL time.Duration `env:"AUTH_EXTENDED_REFRESH_TOKEN_TTL" envDefault:"720h"`
	RefreshTokenMaxAge time.Duration `env:"AUTH_REFRESH_TOKEN_MAX_AGE" envDefault:"4320h"`
	ResetTokenTTL      time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
	StateTTL           time.Duration `env:"AUTH_OAUTH_STATE_TTL" envDefault:"10m"`
	BcryptCost         int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// withDefaults fills zero-value fields so a Config built in code behaves the
// same as one loaded from the environment.
func (c Config) withDefaults() Config {
	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = AccessTokenTTL
	}
	if c.RefreshTokenTTL <= 0 {
		c.RefreshTokenTTL = RefreshTokenTTL
	}
	if c.ExtendedRefreshTTL <= 0 {
		c.ExtendedRefreshTTL = ExtendedRefreshTokenTTL
	}
	if c.RefreshTokenMaxAge <= 0 {
		c.RefreshTokenMaxAge = RefreshTokenMaxAge
	}
	if c.ResetTokenTTL <= 0 {
		c.ResetTokenTTL = ResetTokenTTL
	}
	if c.StateTTL <= 0 {
		c.StateTTL = 10 * time.Minute
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	return c
}
