package services

import (
	"context"
	"log/slog"

	"globalinsights/internal/infrastructure"
)

// logServiceError logs a failed service operation through the context-aware logger
func logServiceError(ctx context.Context, component, action string, err error, attrs ...slog.Attr) {
	logger := infrastructure.LoggerWithContext(ctx)

	allAttrs := []slog.Attr{
		slog.String("component", component),
		slog.String("action", action),
		slog.String("error", err.Error()),
	}
	allAttrs = append(allAttrs, attrs...)

	logger.LogAttrs(ctx, slog.LevelError, "service operation failed", allAttrs...)
}
