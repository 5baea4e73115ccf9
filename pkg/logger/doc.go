// Package logger builds configured slog.Logger instances and provides
// typed attribute helpers for consistent log field naming.
//
// Services receive a *slog.Logger through constructor options and default to
// a discard logger, so library code never writes to stderr unless the caller
// opts in. The attribute helpers keep field names stable across the codebase
// ("user_id", "error", "component", "provider") which matters once logs are
// aggregated.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatJSON),
//	    logger.WithLevel(slog.LevelInfo),
//	    logger.WithAttr(slog.String("service", "auth")),
//	)
//	log.Error("rotation failed", logger.UserID(id), logger.Error(err))
package logger
