// Package pg implements the auth repository interfaces on PostgreSQL via
// pgx. Repositories take a narrow DB interface satisfied by *pgxpool.Pool
// and by pgxmock, so the transactional paths (token rotation, last-admin
// guard) are testable without a live database.
//
// Schema migrations live in migrations/ as goose SQL files and are applied
// with pkg/pg's Migrate helper.
package pg
