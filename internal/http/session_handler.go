package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/example/meeting-poll/internal/application"
)

type sessionService interface {
	CreateSession(ctx context.Context, params application.CreateSessionParams) (application.CreateSessionResult, error)
	GetSessionProjection(ctx context.Context, sessionID string) (application.SessionView, error)
	ProposeTimeslot(ctx context.Context, params application.ProposeTimeslotParams) (application.ProposeTimeslotResult, error)
	RemoveTimeslot(ctx context.Context, params application.RemoveTimeslotParams) error
}

// SessionHandler serves session creation, retrieval, and timeslot management.
type SessionHandler struct {
	service   sessionService
	baseURL   string
	responder responder
	logger    *slog.Logger
}

// NewSessionHandler wires the session endpoints. baseURL prefixes the share
// link returned on creation.
func NewSessionHandler(service sessionService, baseURL string, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service:   service,
		baseURL:   strings.TrimRight(baseURL, "/"),
		responder: newResponder(logger),
		logger:    defaultLogger(logger),
	}
}

type createSessionRequest struct {
	Title       string             `json:"title"`
	CreatorName string             `json:"creator_name"`
	Type        string             `json:"type"`
	ExpiresAt   *time.Time         `json:"expires_at,omitempty"`
	Rules       rulesPayload       `json:"rules"`
	Timeslots   []timeRangePayload `json:"timeslots,omitempty"`
}

type rulesPayload struct {
	Date        *time.Time `json:"date,omitempty"`
	JalaliDate  string     `json:"jalali_date,omitempty"`
	MinTime     string     `json:"min_time,omitempty"`
	MaxTime     string     `json:"max_time,omitempty"`
	AllowedDays []int      `json:"allowed_days,omitempty"`
}

type createSessionResponse struct {
	ID        string `json:"id"`
	ShareLink string `json:"share_link"`
}

type sessionResponse struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	CreatorName  string             `json:"creator_name"`
	Type         string             `json:"type"`
	RulesSummary string             `json:"rules_summary"`
	Rules        rulesPayload       `json:"rules"`
	CreatedAt    time.Time          `json:"created_at"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`
	ShareLink    string             `json:"share_link"`
	Timeslots    []timeslotResponse `json:"timeslots"`
}

type timeslotResponse struct {
	ID          string         `json:"id"`
	StartUTC    time.Time      `json:"start_utc"`
	EndUTC      time.Time      `json:"end_utc"`
	StartJalali string         `json:"start_jalali"`
	EndJalali   string         `json:"end_jalali"`
	CreatedBy   string         `json:"created_by,omitempty"`
	VoteCount   int            `json:"vote_count"`
	Votes       []voteResponse `json:"votes"`
}

type voteResponse struct {
	VoterName string    `json:"voter_name"`
	Note      string    `json:"note,omitempty"`
	CastAt    time.Time `json:"cast_at"`
}

type proposeTimeslotRequest struct {
	timeRangePayload
	CreatedBy string `json:"created_by"`
	Password  string `json:"password,omitempty"`
}

type proposeTimeslotResponse struct {
	TimeslotID  string    `json:"timeslot_id"`
	Created     bool      `json:"created"`
	StartUTC    time.Time `json:"start_utc"`
	EndUTC      time.Time `json:"end_utc"`
	StartJalali string    `json:"start_jalali"`
	EndJalali   string    `json:"end_jalali"`
}

type removeTimeslotRequest struct {
	Password string `json:"password,omitempty"`
}

// Create handles POST /api/v1/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	rules, err := req.Rules.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	timeslots := make([]application.TimeslotInput, 0, len(req.Timeslots))
	for _, payload := range req.Timeslots {
		start, end, err := payload.resolve()
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		timeslots = append(timeslots, application.TimeslotInput{Start: start, End: end})
	}

	result, err := h.service.CreateSession(r.Context(), application.CreateSessionParams{
		Title:       req.Title,
		CreatorName: req.CreatorName,
		Shape:       req.Type,
		Rules:       rules,
		Timeslots:   timeslots,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "session", "create").InfoContext(r.Context(), "session created", "session_id", result.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createSessionResponse{
		ID:        result.ID,
		ShareLink: h.baseURL + result.Link,
	})
}

// Get handles GET /api/v1/sessions/:id.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := strings.TrimSpace(ps.ByName("id"))
	if sessionID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	view, err := h.service.GetSessionProjection(r.Context(), sessionID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.toSessionResponse(view))
}

// ProposeTimeslot handles POST /api/v1/sessions/:id/timeslots.
func (h *SessionHandler) ProposeTimeslot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := strings.TrimSpace(ps.ByName("id"))
	if sessionID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req proposeTimeslotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, end, err := req.resolve()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.ProposeTimeslot(r.Context(), application.ProposeTimeslotParams{
		SessionID: sessionID,
		Start:     start,
		End:       end,
		CreatedBy: req.CreatedBy,
		Password:  req.Password,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	h.responder.writeJSON(r.Context(), w, status, proposeTimeslotResponse{
		TimeslotID:  result.TimeslotID,
		Created:     result.Created,
		StartUTC:    result.Start,
		EndUTC:      result.End,
		StartJalali: jalaliString(result.Start),
		EndJalali:   jalaliString(result.End),
	})
}

// RemoveTimeslot handles DELETE /api/v1/sessions/:id/timeslots/:timeslotID.
// The optional body carries the removal password.
func (h *SessionHandler) RemoveTimeslot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := strings.TrimSpace(ps.ByName("id"))
	timeslotID := strings.TrimSpace(ps.ByName("timeslotID"))
	if sessionID == "" || timeslotID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req removeTimeslotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.RemoveTimeslot(r.Context(), application.RemoveTimeslotParams{
		SessionID:  sessionID,
		TimeslotID: timeslotID,
		Password:   req.Password,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SessionHandler) toSessionResponse(view application.SessionView) sessionResponse {
	response := sessionResponse{
		ID:           view.ID,
		Title:        view.Title,
		CreatorName:  view.CreatorName,
		Type:         view.Shape,
		RulesSummary: view.RulesSummary,
		Rules:        toRulesPayload(view.Rules),
		CreatedAt:    view.CreatedAt,
		ExpiresAt:    view.ExpiresAt,
		ShareLink:    h.baseURL + "/" + view.ID,
		Timeslots:    make([]timeslotResponse, 0, len(view.Timeslots)),
	}

	for _, slot := range view.Timeslots {
		slotResponse := timeslotResponse{
			ID:          slot.ID,
			StartUTC:    slot.Start,
			EndUTC:      slot.End,
			StartJalali: jalaliString(slot.Start),
			EndJalali:   jalaliString(slot.End),
			CreatedBy:   slot.CreatedBy,
			VoteCount:   slot.VoteCount,
			Votes:       make([]voteResponse, 0, len(slot.Votes)),
		}
		for _, vote := range slot.Votes {
			slotResponse.Votes = append(slotResponse.Votes, voteResponse{
				VoterName: vote.VoterName,
				Note:      vote.Note,
				CastAt:    vote.CastAt,
			})
		}
		response.Timeslots = append(response.Timeslots, slotResponse)
	}

	return response
}

func (p rulesPayload) toInput() (application.RulesInput, error) {
	input := application.RulesInput{
		MinTime: p.MinTime,
		MaxTime: p.MaxTime,
	}

	if p.Date != nil {
		date := p.Date.UTC()
		input.Date = &date
	} else if p.JalaliDate != "" {
		date, err := parseJalaliDate(p.JalaliDate)
		if err != nil {
			return application.RulesInput{}, err
		}
		civil := date.Time(0, 0, time.UTC)
		input.Date = &civil
	}

	for _, day := range p.AllowedDays {
		input.AllowedDays = append(input.AllowedDays, time.Weekday(day))
	}
	return input, nil
}

func toRulesPayload(input application.RulesInput) rulesPayload {
	payload := rulesPayload{
		MinTime: input.MinTime,
		MaxTime: input.MaxTime,
	}
	if input.Date != nil {
		date := *input.Date
		payload.Date = &date
		payload.JalaliDate = jalaliDateString(date)
	}
	for _, day := range input.AllowedDays {
		payload.AllowedDays = append(payload.AllowedDays, int(day))
	}
	return payload
}
