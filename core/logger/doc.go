// Package logger builds slog loggers and provides attribute helpers for the
// actor runtime.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/actorkit/core/logger"
//
//	log := logger.New(
//		logger.WithDevelopment("pipeline"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("actor started",
//		logger.Actor("db-read"),
//		logger.Count("workers", 5),
//	)
//
// # Environment Configurations
//
//	// Development: text format, debug level
//	devLogger := logger.New(logger.WithDevelopment("pipeline"))
//
//	// Production and staging: JSON format, info level
//	prodLogger := logger.New(logger.WithProduction("pipeline"))
//
//	// Custom configuration
//	customLogger := logger.New(
//		logger.WithLevel(slog.LevelWarn),
//		logger.WithJSONFormatter(),
//		logger.WithAttr(slog.String("node", "a")),
//		logger.WithOutput(os.Stderr),
//	)
//
// # Context Values
//
// Attributes stored in a context can be added to every record logged with it:
//
//	log := logger.New(logger.WithContextValue("run_id", runIDKey{}))
//	log.InfoContext(ctx, "flushing batch")
//
// # Attribute Helpers
//
// Helpers such as Actor, Channel, Worker, MessageID, Error and Duration produce
// consistently named attributes. Helpers taking a string or error return an
// empty slog.Attr for empty input, which slog drops:
//
//	log.Warn("shutdown timeout exceeded",
//		logger.Actor(name),
//		logger.Timeout(d),
//		logger.Error(err),
//	)
//
// Components in this module default to a logger that discards output; pass one
// built here through their WithLogger options.
package logger
