package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/example/meeting-poll/internal/application"
	"github.com/example/meeting-poll/internal/logging"
)

type voteService interface {
	RecordVotes(ctx context.Context, params application.RecordVotesParams) error
}

// VoteHandler serves vote submissions.
type VoteHandler struct {
	service   voteService
	responder responder
	logger    *slog.Logger
}

func NewVoteHandler(service voteService, logger *slog.Logger) *VoteHandler {
	return &VoteHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

type voteRequest struct {
	VoterName  string             `json:"voter_name"`
	Password   string             `json:"password,omitempty"`
	Selections []selectionPayload `json:"selections"`
}

type selectionPayload struct {
	TimeslotID string `json:"timeslot_id"`
	Note       string `json:"note,omitempty"`
}

// Record handles POST /api/v1/sessions/:id/vote. The submission replaces the
// voter's previous vote set wholesale.
func (h *VoteHandler) Record(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := strings.TrimSpace(ps.ByName("id"))
	if sessionID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	selections := make([]application.SelectionInput, 0, len(req.Selections))
	for _, selection := range req.Selections {
		selections = append(selections, application.SelectionInput{
			TimeslotID: selection.TimeslotID,
			Note:       selection.Note,
		})
	}

	err := h.service.RecordVotes(r.Context(), application.RecordVotesParams{
		SessionID:  sessionID,
		VoterName:  req.VoterName,
		Password:   req.Password,
		Selections: selections,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "vote", "record", logging.SessionAttr(sessionID)).
		InfoContext(r.Context(), "votes recorded", "selections", len(selections))
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
