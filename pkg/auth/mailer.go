package auth

import "context"

// Mailer delivers the auth lifecycle emails. Templates are rendered
// elsewhere; the token argument is the plaintext secret to embed in the
// link. pkg/email provides a Postmark-backed implementation.
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, email, token string) error
	SendVerificationEmail(ctx context.Context, email, token string) error
}
