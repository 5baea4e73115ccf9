package auth

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/authkit/pkg/jwt"
)

// AccessClaims is the payload of every access token: the subject user id,
// the role list resolved at issuance, and the issuance window.
type AccessClaims struct {
	Subject   string   `json:"sub"`
	Roles     []string `json:"roles"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
}

// Valid implements the temporal validation hook used by jwt.Service.Parse.
func (c AccessClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return jwt.ErrExpiredToken
	}
	return nil
}

// TokenIssuer mints short-lived signed access tokens. It is stateless: the
// output is a pure function of (user, roles, current time, signing key).
type TokenIssuer struct {
	signer *jwt.Service
	ttl    time.Duration
}

// IssuerOption configures a TokenIssuer during construction.
type IssuerOption func(*TokenIssuer)

// WithAccessTokenTTL overrides the default one hour access token lifetime.
func WithAccessTokenTTL(ttl time.Duration) IssuerOption {
	return func(i *TokenIssuer) {
		i.ttl = ttl
	}
}

// NewTokenIssuer creates an issuer signing with the given key. An empty key
// is a configuration failure and is rejected up front: an unsigned session
// must never be issued.
func NewTokenIssuer(signingKey string, opts ...IssuerOption) (*TokenIssuer, error) {
	signer, err := jwt.NewFromString(signingKey)
	if err != nil {
		return nil, ErrMissingSigningKey
	}

	i := &TokenIssuer{
		signer: signer,
		ttl:    AccessTokenTTL,
	}
	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

// Issue mints a signed access token for the user with the resolved role
// list. Signing errors are surfaced to the caller, never swallowed.
func (i *TokenIssuer) Issue(user *User, roles []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.ttl)

	token, err := i.signer.Generate(AccessClaims{
		Subject:   user.ID.String(),
		Roles:     roles,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return token, expiresAt, nil
}

// Parse verifies a token string and returns its claims. Expired tokens fail
// with jwt.ErrExpiredToken.
func (i *TokenIssuer) Parse(token string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := i.signer.Parse(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}
