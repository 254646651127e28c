package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/meeting-poll/internal/application"
)

var (
	errBadRequestBody   = errors.New("درخواست نامعتبر است.")
	errInvalidSessionID = errors.New("شناسه جلسه نامعتبر است.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps the application error surface onto HTTP statuses.
// Clients dispatch on error_code; message is the user-facing Persian text.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "not_found",
			Message:   "جلسه مورد نظر یافت نشد.",
		})
	case errors.Is(err, application.ErrUnknownTimeslot):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "unknown_timeslot",
			Message:   "گزینه زمانی مورد نظر یافت نشد.",
		})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusGone, errorResponse{
			ErrorCode: "session_expired",
			Message:   "مهلت این جلسه به پایان رسیده است.",
		})
	case errors.Is(err, application.ErrPasswordRequired):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "password_required",
			Message:   "برای این عملیات رمز عبور لازم است.",
		})
	case errors.Is(err, application.ErrInvalidPassword):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "invalid_password",
			Message:   "رمز عبور اشتباه است.",
		})
	case errors.Is(err, application.ErrProposalsNotAllowed):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "proposals_not_allowed",
			Message:   "در این جلسه امکان پیشنهاد زمان جدید وجود ندارد.",
		})
	case errors.Is(err, application.ErrOutsideAllowedWindow):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "outside_allowed_window",
			Message:   "زمان پیشنهادی خارج از بازه مجاز جلسه است.",
		})
	case errors.Is(err, application.ErrDayNotAllowed):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "day_not_allowed",
			Message:   "روز انتخاب‌شده در این جلسه مجاز نیست.",
		})
	case errors.Is(err, application.ErrDuplicateTimeslot):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "duplicate_timeslot",
			Message:   "این بازه زمانی قبلاً ثبت شده است.",
		})
	case errors.Is(err, application.ErrTimeslotHasVotes):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "timeslot_has_votes",
			Message:   "این گزینه رأی دارد و قابل حذف نیست.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				ErrorCode: "validation_failed",
				Message:   "اطلاعات واردشده معتبر نیست.",
				Errors:    vErr.FieldErrors,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "خطای داخلی سرور رخ داده است."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "درخواست نامعتبر است."
	case http.StatusNotFound:
		return "منبع مورد نظر یافت نشد."
	case http.StatusConflict:
		return "درخواست با وضعیت فعلی منبع در تضاد است."
	case http.StatusUnprocessableEntity:
		return "اطلاعات واردشده معتبر نیست."
	case http.StatusTooManyRequests:
		return "تعداد درخواست‌ها بیش از حد مجاز است."
	default:
		return "خطای داخلی سرور رخ داده است."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
