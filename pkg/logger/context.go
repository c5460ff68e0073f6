package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const (
	kindKey ctxKey = iota
	deliveryIDKey
)

// WithKind stores the email kind in ctx so log records carry it.
func WithKind(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, kindKey, kind)
}

// WithDeliveryID stores the delivery id in ctx so log records carry it.
func WithDeliveryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deliveryIDKey, id)
}

// KindFromContext returns the email kind stored with WithKind.
func KindFromContext(ctx context.Context) string {
	s, _ := ctx.Value(kindKey).(string)
	return s
}

// DeliveryIDFromContext returns the delivery id stored with WithDeliveryID.
func DeliveryIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(deliveryIDKey).(string)
	return s
}

// KindExtractor adds the "kind" attribute.
func KindExtractor(ctx context.Context) (slog.Attr, bool) {
	return stringAttr("kind", KindFromContext(ctx))
}

// DeliveryIDExtractor adds the "delivery_id" attribute.
func DeliveryIDExtractor(ctx context.Context) (slog.Attr, bool) {
	return stringAttr("delivery_id", DeliveryIDFromContext(ctx))
}

// RequestIDExtractor adds the "request_id" attribute set by chi's
// RequestID middleware.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	return stringAttr("request_id", middleware.GetReqID(ctx))
}

// DefaultExtractors returns every extractor this package provides.
func DefaultExtractors() []ContextExtractor {
	return []ContextExtractor{RequestIDExtractor, KindExtractor, DeliveryIDExtractor}
}

func stringAttr(key, value string) (slog.Attr, bool) {
	if value == "" {
		return slog.Attr{}, false
	}
	return slog.String(key, value), true
}
