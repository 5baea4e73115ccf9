// Package email delivers transactional auth emails.
//
// EmailSender is the low-level transport interface with two implementations:
// a Postmark-backed client for production and a development sender that
// writes emails to disk. AuthMailer sits on top and implements the mailer
// contract the auth services expect (password reset, email verification),
// composing links from configured base URLs. Template rendering beyond these
// minimal bodies is out of scope and belongs to the consuming application.
//
// # Usage
//
//	sender, err := email.NewPostmarkClient(cfg)
//	mailer := email.NewAuthMailer(sender, mailerCfg)
//	// pass mailer to auth.NewService / auth.NewPasswordResetFlow
package email
