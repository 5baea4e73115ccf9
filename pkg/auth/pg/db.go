package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// DB is the subset of pgxpool.Pool the repositories need. pgxmock's
// PgxPoolIface satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewRepositories wires every repository over a shared connection pool.
func NewRepositories(db DB) auth.Repositories {
	return auth.Repositories{
		Users:          NewUserRepository(db),
		Credentials:    NewCredentialsRepository(db),
		RefreshTokens:  NewRefreshTokenRepository(db),
		ExternalLogins: NewExternalLoginRepository(db),
		Profiles:       NewProfileRepository(db),
		Preferences:    NewPreferencesRepository(db),
		ResetTokens:    NewPasswordResetTokenRepository(db),
		Roles:          NewRoleRepository(db),
	}
}
