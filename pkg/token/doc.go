// Package token provides compact, signed tokens for embedding JSON payloads
// in links.
//
// Tokens use HMAC-SHA256 with a truncated 8-byte signature to stay short
// enough for email links. The truncated signature gives roughly 2^32 forgery
// resistance, which is adequate for short-lived, single-purpose tokens such
// as email verification, but NOT for session credentials. Refresh tokens
// and password reset tokens are stored server-side instead (see pkg/auth).
//
// Token format: base64url(payload).base64url(signature)
//
// # Usage
//
//	type Payload struct {
//	    UserID string `json:"uid"`
//	    Exp    int64  `json:"exp"`
//	}
//
//	tok, err := token.GenerateToken(Payload{id, exp}, secret)
//	p, err := token.ParseToken[Payload](tok, secret)
package token
