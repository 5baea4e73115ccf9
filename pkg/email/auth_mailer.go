package email

import (
	"context"
	"fmt"
	"html"
	"net/url"
)

// AuthMailer composes and sends the auth lifecycle emails. It keeps the
// bodies deliberately minimal; applications wanting branded templates should
// implement the auth mailer contract themselves on top of EmailSender.
type AuthMailer struct {
	sender EmailSender
	config AuthMailerConfig
}

// NewAuthMailer creates an AuthMailer backed by the given transport.
func NewAuthMailer(sender EmailSender, cfg AuthMailerConfig) *AuthMailer {
	return &AuthMailer{sender: sender, config: cfg}
}

// SendPasswordResetEmail sends the reset link carrying the one-time token.
func (m *AuthMailer) SendPasswordResetEmail(ctx context.Context, recipient, token string) error {
	link := m.config.ResetPasswordURL + "?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(
		`<p>We received a request to reset your %s password.</p>
<p><a href="%s">Reset your password</a></p>
<p>The link expires in one hour. If you did not request a reset, you can safely ignore this email.</p>`,
		html.EscapeString(m.config.ProductName), link,
	)

	return m.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   recipient,
		Subject:  "Reset your password",
		BodyHTML: body,
		Tag:      "password-reset",
	})
}

// SendVerificationEmail sends the address confirmation link.
func (m *AuthMailer) SendVerificationEmail(ctx context.Context, recipient, token string) error {
	link := m.config.VerifyEmailURL + "?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(
		`<p>Confirm your email address for %s.</p>
<p><a href="%s">Verify email</a></p>
<p>If you did not create an account, you can safely ignore this email.</p>`,
		html.EscapeString(m.config.ProductName), link,
	)

	return m.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   recipient,
		Subject:  "Verify your email address",
		BodyHTML: body,
		Tag:      "email-verification",
	})
}
