package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/meeting-poll/internal/application"
	"github.com/example/meeting-poll/internal/testfixtures"
)

type schedulingServiceStub struct {
	createResult  application.CreateSessionResult
	createErr     error
	createParams  application.CreateSessionParams
	view          application.SessionView
	viewErr       error
	proposeResult application.ProposeTimeslotResult
	proposeErr    error
	proposeParams application.ProposeTimeslotParams
	votesErr      error
	votesParams   application.RecordVotesParams
	removeErr     error
	removeParams  application.RemoveTimeslotParams
	stats         application.Stats
	statsErr      error
}

func (s *schedulingServiceStub) CreateSession(ctx context.Context, params application.CreateSessionParams) (application.CreateSessionResult, error) {
	s.createParams = params
	return s.createResult, s.createErr
}

func (s *schedulingServiceStub) GetSessionProjection(ctx context.Context, sessionID string) (application.SessionView, error) {
	if s.viewErr != nil {
		return application.SessionView{}, s.viewErr
	}
	return s.view, nil
}

func (s *schedulingServiceStub) ProposeTimeslot(ctx context.Context, params application.ProposeTimeslotParams) (application.ProposeTimeslotResult, error) {
	s.proposeParams = params
	return s.proposeResult, s.proposeErr
}

func (s *schedulingServiceStub) RecordVotes(ctx context.Context, params application.RecordVotesParams) error {
	s.votesParams = params
	return s.votesErr
}

func (s *schedulingServiceStub) RemoveTimeslot(ctx context.Context, params application.RemoveTimeslotParams) error {
	s.removeParams = params
	return s.removeErr
}

func (s *schedulingServiceStub) AggregateStats(ctx context.Context) (application.Stats, error) {
	if s.statsErr != nil {
		return application.Stats{}, s.statsErr
	}
	return s.stats, nil
}

func newTestRouter(stub *schedulingServiceStub) http.Handler {
	return NewRouter(RouterConfig{
		Sessions: NewSessionHandler(stub, "https://meet.example.com", nil),
		Votes:    NewVoteHandler(stub, nil),
		Admin:    NewAdminHandler(stub, nil, nil),
	})
}

func TestCreateSessionEndpoint(t *testing.T) {
	t.Parallel()

	stub := &schedulingServiceStub{
		createResult: application.CreateSessionResult{ID: "abc12", Link: "/abc12"},
	}
	router := newTestRouter(stub)

	body := `{
		"title": "Sprint planning",
		"creator_name": "Sara",
		"type": "fixed",
		"timeslots": [
			{"start_utc": "2024-03-11T10:00:00Z", "end_utc": "2024-03-11T11:00:00Z"},
			{"start_utc": "2024-03-12T10:00:00Z", "end_utc": "2024-03-12T11:00:00Z"}
		]
	}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(body)))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		ID        string `json:"id"`
		ShareLink string `json:"share_link"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.ID != "abc12" || response.ShareLink != "https://meet.example.com/abc12" {
		t.Fatalf("unexpected response: %+v", response)
	}

	if stub.createParams.Shape != "fixed" || len(stub.createParams.Timeslots) != 2 {
		t.Fatalf("unexpected params: %+v", stub.createParams)
	}
}

func TestCreateSessionJalaliTimeslots(t *testing.T) {
	t.Parallel()

	stub := &schedulingServiceStub{createResult: application.CreateSessionResult{ID: "jal01", Link: "/jal01"}}
	router := newTestRouter(stub)

	body := `{
		"title": "Retro",
		"creator_name": "Omid",
		"type": "fixed",
		"timeslots": [
			{"jalali_date": "1402/12/20", "start_time": "10:30", "end_time": "11:30"},
			{"jalali_date": "1402/12/21", "start_time": "10:30", "end_time": "11:30"}
		]
	}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(body)))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}

	// 1402/12/20 10:30 Tehran is 2024-03-10 07:00 UTC.
	want := time.Date(2024, time.March, 10, 7, 0, 0, 0, time.UTC)
	if !stub.createParams.Timeslots[0].Start.Equal(want) {
		t.Fatalf("start = %v, want %v", stub.createParams.Timeslots[0].Start, want)
	}
}

func TestCreateSessionBadBody(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&schedulingServiceStub{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("{not json")))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestCreateSessionValidationErrorsSurface(t *testing.T) {
	t.Parallel()

	vErr := &application.ValidationError{FieldErrors: map[string]string{"title": "title is required"}}
	stub := &schedulingServiceStub{createErr: vErr}
	router := newTestRouter(stub)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"type":"fixed"}`)))

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", recorder.Code)
	}
	var response struct {
		ErrorCode string            `json:"error_code"`
		Errors    map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.ErrorCode != "validation_failed" || response.Errors["title"] == "" {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
}

func TestGetSessionEndpoint(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 10, 7, 0, 0, 0, time.UTC)
	stub := &schedulingServiceStub{
		view: application.SessionView{
			ID:           "abc12",
			Title:        "Sprint planning",
			CreatorName:  "Sara",
			Shape:        "fixed",
			RulesSummary: "fixed timeslots",
			CreatedAt:    start,
			Timeslots: []application.TimeslotView{
				{
					ID:        "slot-1",
					Start:     start,
					End:       start.Add(time.Hour),
					VoteCount: 1,
					Votes:     []application.VoteView{{VoterName: "Reza", CastAt: start}},
				},
			},
		},
	}
	router := newTestRouter(stub)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc12", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		ShareLink string `json:"share_link"`
		Timeslots []struct {
			StartJalali string `json:"start_jalali"`
			VoteCount   int    `json:"vote_count"`
		} `json:"timeslots"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.ShareLink != "https://meet.example.com/abc12" {
		t.Fatalf("share link = %q", response.ShareLink)
	}
	if len(response.Timeslots) != 1 || response.Timeslots[0].StartJalali != "1402/12/20 10:30" {
		t.Fatalf("unexpected timeslots: %+v", response.Timeslots)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	t.Parallel()

	stub := &schedulingServiceStub{viewErr: application.ErrNotFound}
	router := newTestRouter(stub)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope1", nil))

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
	var response struct {
		ErrorCode string `json:"error_code"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.ErrorCode != "not_found" {
		t.Fatalf("error_code = %q", response.ErrorCode)
	}
}

func TestProposeTimeslotEndpoint(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 11, 10, 0, 0, 0, time.UTC)
	stub := &schedulingServiceStub{
		proposeResult: application.ProposeTimeslotResult{
			TimeslotID: "slot-9",
			Created:    true,
			Start:      start,
			End:        start.Add(time.Hour),
		},
	}
	router := newTestRouter(stub)

	body := `{"start_utc": "2024-03-11T10:00:00Z", "end_utc": "2024-03-11T11:00:00Z", "created_by": "Reza", "password": "guard"}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc12/timeslots", strings.NewReader(body)))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}
	if stub.proposeParams.SessionID != "abc12" || stub.proposeParams.Password != "guard" {
		t.Fatalf("unexpected params: %+v", stub.proposeParams)
	}

	// A collapsed duplicate answers 200 instead of 201.
	stub.proposeResult.Created = false
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc12/timeslots", strings.NewReader(body)))
	if recorder.Code != http.StatusOK {
		t.Fatalf("collapsed status = %d, want 200", recorder.Code)
	}
}

func TestProposeTimeslotErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"proposals not allowed", application.ErrProposalsNotAllowed, http.StatusConflict, "proposals_not_allowed"},
		{"outside window", application.ErrOutsideAllowedWindow, http.StatusUnprocessableEntity, "outside_allowed_window"},
		{"day not allowed", application.ErrDayNotAllowed, http.StatusUnprocessableEntity, "day_not_allowed"},
		{"expired", application.ErrSessionExpired, http.StatusGone, "session_expired"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&schedulingServiceStub{proposeErr: tc.err})
			body := `{"start_utc": "2024-03-11T10:00:00Z", "end_utc": "2024-03-11T11:00:00Z"}`

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc12/timeslots", strings.NewReader(body)))

			if recorder.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", recorder.Code, tc.wantStatus)
			}
			var response struct {
				ErrorCode string `json:"error_code"`
			}
			if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if response.ErrorCode != tc.wantCode {
				t.Fatalf("error_code = %q, want %q", response.ErrorCode, tc.wantCode)
			}
		})
	}
}

func TestRecordVotesEndpoint(t *testing.T) {
	t.Parallel()

	stub := &schedulingServiceStub{}
	router := newTestRouter(stub)

	body := `{"voter_name": "Niloofar", "password": "p1", "selections": [{"timeslot_id": "slot-1", "note": "fine"}]}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc12/vote", strings.NewReader(body)))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}
	if stub.votesParams.VoterName != "Niloofar" || len(stub.votesParams.Selections) != 1 {
		t.Fatalf("unexpected params: %+v", stub.votesParams)
	}
	if stub.votesParams.Selections[0].Note != "fine" {
		t.Fatalf("note = %q", stub.votesParams.Selections[0].Note)
	}
}

func TestRecordVotesPasswordErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"password required", application.ErrPasswordRequired, "password_required"},
		{"invalid password", application.ErrInvalidPassword, "invalid_password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&schedulingServiceStub{votesErr: tc.err})
			body := `{"voter_name": "Reza", "selections": [{"timeslot_id": "slot-1"}]}`

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc12/vote", strings.NewReader(body)))

			if recorder.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", recorder.Code)
			}
			var response struct {
				ErrorCode string `json:"error_code"`
			}
			if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if response.ErrorCode != tc.wantCode {
				t.Fatalf("error_code = %q, want %q", response.ErrorCode, tc.wantCode)
			}
		})
	}
}

func TestRemoveTimeslotEndpoint(t *testing.T) {
	t.Parallel()

	stub := &schedulingServiceStub{}
	router := newTestRouter(stub)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/abc12/timeslots/slot-1", strings.NewReader(`{"password": "guard"}`))
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}
	if stub.removeParams.TimeslotID != "slot-1" || stub.removeParams.Password != "guard" {
		t.Fatalf("unexpected params: %+v", stub.removeParams)
	}

	// An empty body is fine for unprotected slots.
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/abc12/timeslots/slot-1", nil))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status without body = %d, want 204", recorder.Code)
	}
}

func TestRemoveTimeslotHasVotes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&schedulingServiceStub{removeErr: application.ErrTimeslotHasVotes})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/abc12/timeslots/slot-1", nil))

	if recorder.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", recorder.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	stub := &schedulingServiceStub{stats: application.Stats{TotalSessions: 2, TotalTimeslots: 5, TotalVotes: 9}}
	router := newTestRouter(stub)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var response statsResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.TotalSessions != 2 || response.TotalTimeslots != 5 || response.TotalVotes != 9 {
		t.Fatalf("unexpected stats: %+v", response)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&schedulingServiceStub{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
}

// Exercises the full stack for a windowed session driven entirely by Jalali
// civil input: the create payload carries jalali_date, and proposals with
// wall-clock times must be measured against the same civil day and window.
func TestJalaliWindowedSessionEndToEnd(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory()
	service, _ := factory.NewSchedulingService(nil)
	router := NewRouter(RouterConfig{
		Sessions: NewSessionHandler(service, "https://meet.example.com", nil),
		Votes:    NewVoteHandler(service, nil),
		Admin:    NewAdminHandler(service, nil, nil),
	})

	// 1402/12/20 is 2024-03-10 Gregorian.
	createBody := `{
		"title": "Design review",
		"creator_name": "Sara",
		"type": "dynamic",
		"rules": {"jalali_date": "1402/12/20", "min_time": "09:00", "max_time": "17:00"}
	}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(createBody)))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", recorder.Code, recorder.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	// A mid-morning slot on the same Jalali day sits inside the window.
	proposeBody := `{
		"jalali_date": "1402/12/20",
		"start_time": "10:00",
		"end_time": "11:00",
		"created_by": "Reza"
	}`
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+created.ID+"/timeslots", strings.NewReader(proposeBody)))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("propose status = %d: %s", recorder.Code, recorder.Body.String())
	}
	var proposed struct {
		StartUTC    time.Time `json:"start_utc"`
		StartJalali string    `json:"start_jalali"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &proposed); err != nil {
		t.Fatalf("decode propose response: %v", err)
	}
	if want := time.Date(2024, time.March, 10, 6, 30, 0, 0, time.UTC); !proposed.StartUTC.Equal(want) {
		t.Fatalf("start_utc = %v, want %v", proposed.StartUTC, want)
	}
	if proposed.StartJalali != "1402/12/20 10:00" {
		t.Fatalf("start_jalali = %q", proposed.StartJalali)
	}

	// A slot running past the close of the window is rejected.
	lateBody := `{
		"jalali_date": "1402/12/20",
		"start_time": "16:30",
		"end_time": "17:30",
		"created_by": "Reza"
	}`
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+created.ID+"/timeslots", strings.NewReader(lateBody)))
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("late slot status = %d, want 422: %s", recorder.Code, recorder.Body.String())
	}
	var rejection struct {
		ErrorCode string `json:"error_code"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &rejection); err != nil {
		t.Fatalf("decode rejection: %v", err)
	}
	if rejection.ErrorCode != "outside_allowed_window" {
		t.Fatalf("error_code = %q, want outside_allowed_window", rejection.ErrorCode)
	}
}
