// Package auth implements identity and session lifecycle management:
// password credentials, signed access tokens, rotating refresh tokens,
// OAuth account linking, password reset, and role mutation invariants.
//
// # Architecture
//
// The package is built from small composable components, each depending only
// on the repository interfaces it needs:
//
//   - TokenIssuer mints short-lived signed access tokens (HS256 via pkg/jwt).
//   - RefreshTokenStore manages opaque rotating refresh tokens, hashed at
//     rest, with one-time-use rotation and an absolute age ceiling.
//   - OAuthLinker reconciles third-party identity claims with local accounts
//     (login, link, or create).
//   - RoleManager mutates role sets under fixed invariants (immutable base
//     role, last-admin protection).
//   - PasswordResetFlow issues and redeems single-use reset tokens.
//   - Service orchestrates the above into register, login, refresh, reset,
//     and OAuth callback use cases.
//
// Storage is abstracted behind per-entity repository interfaces so the core
// stays independent of the storage engine; pkg/auth/pg provides the
// PostgreSQL implementation and pkg/auth/statestore the OAuth CSRF state
// backends.
//
// # Security model
//
// Refresh and password-reset tokens are 32 bytes of cryptographically secure
// randomness delivered to the client as 64 hex characters; only their
// SHA-256 digest is persisted, so a database read alone cannot impersonate a
// user. Rotation is one-time-use: the presented token row is atomically
// replaced, limiting a stolen token to a single use. Login and
// password-reset requests fail uniformly to prevent account enumeration.
//
// # Usage
//
//	svc, err := auth.NewService(repos, cfg,
//		auth.WithLogger(log),
//		auth.WithMailer(mailer),
//		auth.WithProvider(auth.NewGoogleAdapter(googleCfg)),
//		auth.WithStateStore(states),
//	)
//	session, err := svc.Login(ctx, auth.LoginParams{Email: email, Password: password})
package auth
