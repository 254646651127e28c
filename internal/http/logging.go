package http

import (
	"context"
	"log/slog"

	"github.com/example/meeting-poll/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger scopes the resolved logger to one endpoint invocation.
func handlerLogger(ctx context.Context, fallback *slog.Logger, endpoint, operation string, attrs ...any) *slog.Logger {
	pairs := []any{"endpoint", endpoint}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logging.Resolve(ctx, fallback).With(pairs...)
}
