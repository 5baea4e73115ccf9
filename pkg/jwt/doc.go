// Package jwt implements HMAC-SHA256 signed JSON Web Tokens for short-lived
// access credentials.
//
// The implementation is intentionally limited to HS256 with a single shared
// signing key: the tokens are issued and verified by the same process family,
// so asymmetric algorithms and key rotation machinery would add surface
// without benefit. Algorithm confusion is prevented by rejecting any header
// that does not declare HS256.
//
// Claims are arbitrary JSON-serializable structures. Types implementing
// `Valid() error` get their temporal claims checked during Parse.
//
// # Usage
//
//	svc, err := jwt.NewFromString(cfg.SigningKey)
//	tok, err := svc.Generate(claims)
//	var claims AccessClaims
//	err = svc.Parse(tok, &claims)
package jwt
