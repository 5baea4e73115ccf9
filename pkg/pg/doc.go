// Package pg provides PostgreSQL connectivity for the auth subsystem:
// pooled connections with startup retry, schema migrations via goose, and
// error classification helpers.
//
// The helpers translate driver-level errors into questions the storage layer
// actually asks: IsNotFoundError for pgx.ErrNoRows, IsDuplicateKeyError for
// unique constraint violations (email and slug uniqueness), and
// IsForeignKeyViolationError for referential integrity failures.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil { ... }
package pg
