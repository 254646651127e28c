package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/example/meeting-poll/internal/application"
)

type statsService interface {
	AggregateStats(ctx context.Context) (application.Stats, error)
}

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AdminHandler serves the operational endpoints.
type AdminHandler struct {
	service   statsService
	pinger    Pinger
	responder responder
}

func NewAdminHandler(service statsService, pinger Pinger, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: service, pinger: pinger, responder: newResponder(logger)}
}

type statsResponse struct {
	TotalSessions  int `json:"total_sessions"`
	TotalTimeslots int `json:"total_timeslots"`
	TotalVotes     int `json:"total_votes"`
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stats, err := h.service.AggregateStats(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsResponse{
		TotalSessions:  stats.TotalSessions,
		TotalTimeslots: stats.TotalTimeslots,
		TotalVotes:     stats.TotalVotes,
	})
}

// Health handles GET /health.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status := "ok"
	code := http.StatusOK
	if h != nil && h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	h.responder.writeJSON(r.Context(), w, code, map[string]string{"status": status})
}
