// Package logger provides structured logging with context extraction and
// optional Sentry fan-out.
//
// Loggers are plain *slog.Logger values. The handler is wrapped by
// LogHandlerDecorator, which runs ContextExtractors on every record so
// request-scoped values end up in the output without being passed around.
//
// # Usage
//
//	log := logger.New(cfg, logger.DefaultExtractors()...)
//
//	ctx = logger.WithKind(ctx, "order-confirmation")
//	ctx = logger.WithDeliveryID(ctx, id)
//	log.InfoContext(ctx, "email sent")
//	// {"level":"INFO","msg":"email sent","kind":"order-confirmation","delivery_id":"..."}
//
// RequestIDExtractor reads the id set by chi's middleware.RequestID.
//
// # Sentry
//
// When Config.Sentry.DSN is set, errors create Sentry issues and records at
// or above Sentry.MinLevel are stored as Sentry logs. An empty DSN or a failed
// SDK init falls back to stdout only. Call Flush before the process exits.
//
// Packages that accept a logger default to NewNope.
package logger
