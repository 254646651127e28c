package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/meeting-poll/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// serviceLogger scopes the resolved logger to one service operation.
func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logging.Resolve(ctx, base).With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnknownTimeslot):
		return "unknown_timeslot"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrPasswordRequired):
		return "password_required"
	case errors.Is(err, ErrInvalidPassword):
		return "invalid_password"
	case errors.Is(err, ErrProposalsNotAllowed):
		return "proposals_not_allowed"
	case errors.Is(err, ErrOutsideAllowedWindow):
		return "outside_allowed_window"
	case errors.Is(err, ErrDayNotAllowed):
		return "day_not_allowed"
	case errors.Is(err, ErrDuplicateTimeslot):
		return "duplicate_timeslot"
	case errors.Is(err, ErrTimeslotHasVotes):
		return "timeslot_has_votes"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
