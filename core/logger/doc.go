// Package logger provides slog construction and attribute helpers for the
// capsule server.
//
// # Basic Usage
//
//	import "github.com/catb00mer/fluffer/core/logger"
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithAttr(logger.Component("capsule")),
//	)
//
//	log.Info("request resolved",
//		logger.ConnID(id),
//		logger.Path("/users/42"),
//		logger.Route("/users/:id"),
//	)
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or empty input, which slog
// drops, so callers never guard against nil errors or missing values:
//
//	log.Debug("stream closed", logger.Error(err))
//
// # Silent Logging
//
// Nop returns a logger that discards everything. Libraries default to it
// so nothing is printed unless the application supplies a logger.
package logger
