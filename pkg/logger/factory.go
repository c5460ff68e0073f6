package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a logger from cfg writing to stdout, with optional context
// extractors. When cfg.Sentry.DSN is set, records are also sent to Sentry.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	base := newHandler(os.Stdout, cfg)
	if cfg.Sentry.DSN == "" {
		return slog.New(NewLogHandlerDecorator(base, extractors...))
	}
	return slog.New(NewLogHandlerDecorator(withSentry(base, cfg.Sentry), extractors...))
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if strings.EqualFold(cfg.Format, FormatText) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
