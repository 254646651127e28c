package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-poll/internal/logging"
	"github.com/example/meeting-poll/internal/persistence"
	"github.com/example/meeting-poll/internal/poll"
)

// createIDAttempts bounds retries when a generated short id collides.
const createIDAttempts = 5

// SessionRepository captures the persistence interactions needed by the service.
type SessionRepository interface {
	CreateSession(ctx context.Context, session persistence.Session) error
	SaveSession(ctx context.Context, session persistence.Session) error
	GetSession(ctx context.Context, id string) (persistence.Session, error)
	SessionExists(ctx context.Context, id string) (bool, error)
}

// StatsReader exposes the cross-session aggregate counts.
type StatsReader interface {
	Stats(ctx context.Context) (persistence.Stats, error)
}

// SchedulingService orchestrates session creation, timeslot proposals, and
// voting against the repository. Each operation loads, validates, mutates, and
// persists one session aggregate as a unit; operations on the same session are
// serialized by a per-session lock while different sessions run in parallel.
type SchedulingService struct {
	sessions    SessionRepository
	stats       StatsReader
	passwords   poll.PasswordVerifier
	shortID     func() string
	idGenerator func() string
	now         func() time.Time
	defaultTTL  time.Duration
	locks       *sessionLocks
	logger      *slog.Logger
}

// NewSchedulingService wires dependencies for scheduling operations. shortID
// produces session identifiers, idGenerator produces timeslot and vote ids.
func NewSchedulingService(sessions SessionRepository, stats StatsReader, passwords poll.PasswordVerifier, shortID, idGenerator func() string, now func() time.Time) *SchedulingService {
	if passwords == nil {
		passwords = BcryptPasswords{}
	}
	if shortID == nil {
		shortID = func() string { return "" }
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SchedulingService{
		sessions:    sessions,
		stats:       stats,
		passwords:   passwords,
		shortID:     shortID,
		idGenerator: idGenerator,
		now:         now,
		locks:       newSessionLocks(),
	}
}

// NewSchedulingServiceWithLogger wires dependencies along with a base logger.
func NewSchedulingServiceWithLogger(sessions SessionRepository, stats StatsReader, passwords poll.PasswordVerifier, shortID, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SchedulingService {
	service := NewSchedulingService(sessions, stats, passwords, shortID, idGenerator, now)
	service.logger = defaultLogger(logger)
	return service
}

// SetDefaultSessionTTL makes sessions created without an explicit expiry
// expire after ttl. Zero keeps them open indefinitely.
func (s *SchedulingService) SetDefaultSessionTTL(ttl time.Duration) {
	if s == nil || ttl < 0 {
		return
	}
	s.defaultTTL = ttl
}

// CreateSession validates the request and persists a new session aggregate.
func (s *SchedulingService) CreateSession(ctx context.Context, params CreateSessionParams) (CreateSessionResult, error) {
	if s == nil || s.sessions == nil {
		return CreateSessionResult{}, fmt.Errorf("scheduling service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "scheduling", "create_session")

	vErr := &ValidationError{}
	if strings.TrimSpace(params.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(params.CreatorName) == "" {
		vErr.add("creator_name", "creator name is required")
	}
	if params.ExpiresAt != nil && !params.ExpiresAt.After(s.now()) {
		vErr.add("expires_at", "expiry must be in the future")
	}
	if vErr.HasErrors() {
		return CreateSessionResult{}, vErr
	}

	rules, err := buildRules(params.Shape, params.Rules)
	if err != nil {
		return CreateSessionResult{}, err
	}

	initial := make([]poll.TimeRange, 0, len(params.Timeslots))
	for _, input := range params.Timeslots {
		timeRange, err := poll.NewTimeRange(input.Start, input.End)
		if err != nil {
			vErr.add("timeslots", "each timeslot needs start before end")
			return CreateSessionResult{}, vErr
		}
		initial = append(initial, timeRange)
	}

	now := s.now().UTC()
	for attempt := 0; attempt < createIDAttempts; attempt++ {
		id := s.shortID()
		taken, err := s.sessions.SessionExists(ctx, id)
		if err != nil {
			logger.ErrorContext(ctx, "failed to check session id", "error", err)
			return CreateSessionResult{}, err
		}
		if taken {
			continue
		}

		session, err := poll.NewSession(id, params.Title, params.CreatorName, rules, initial, s.idGenerator, now)
		if err != nil {
			return CreateSessionResult{}, mapDomainError(err)
		}
		session.ExpiresAt = cloneTime(params.ExpiresAt)
		if session.ExpiresAt == nil && s.defaultTTL > 0 {
			expiry := now.Add(s.defaultTTL)
			session.ExpiresAt = &expiry
		}

		if err := s.sessions.CreateSession(ctx, toRecord(session)); err != nil {
			// The id can still be claimed between the check and the insert.
			if errors.Is(err, persistence.ErrDuplicate) {
				continue
			}
			logger.ErrorContext(ctx, "failed to persist session", "error", err)
			return CreateSessionResult{}, err
		}

		logger.InfoContext(ctx, "session created", "session_id", session.ID, "shape", string(rules.Shape()), "timeslots", len(session.Timeslots))
		return CreateSessionResult{ID: session.ID, Link: "/" + session.ID}, nil
	}

	return CreateSessionResult{}, fmt.Errorf("could not allocate a unique session id after %d attempts", createIDAttempts)
}

// GetSessionProjection returns the read model for a session. Expired sessions
// stay readable.
func (s *SchedulingService) GetSessionProjection(ctx context.Context, sessionID string) (SessionView, error) {
	if s == nil || s.sessions == nil {
		return SessionView{}, fmt.Errorf("scheduling service not configured")
	}

	session, err := s.loadAggregate(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return toSessionView(session), nil
}

// ProposeTimeslot appends a voter-proposed timeslot to an open-shape session.
// An exact duplicate collapses into the existing slot.
func (s *SchedulingService) ProposeTimeslot(ctx context.Context, params ProposeTimeslotParams) (ProposeTimeslotResult, error) {
	if s == nil || s.sessions == nil {
		return ProposeTimeslotResult{}, fmt.Errorf("scheduling service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "scheduling", "propose_timeslot", logging.SessionAttr(params.SessionID))

	candidate, err := poll.NewTimeRange(params.Start, params.End)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return ProposeTimeslotResult{}, vErr
	}

	passwordHash := ""
	if params.Password != "" {
		passwordHash, err = s.passwords.Hash(params.Password)
		if err != nil {
			return ProposeTimeslotResult{}, err
		}
	}

	release := s.locks.acquire(params.SessionID)
	defer release()

	session, err := s.loadAggregate(ctx, params.SessionID)
	if err != nil {
		return ProposeTimeslotResult{}, err
	}

	slot, created, err := session.ProposeTimeslot(candidate, params.CreatedBy, passwordHash, s.idGenerator, s.now())
	if err != nil {
		logger.InfoContext(ctx, "proposal rejected", "error_kind", ErrorKind(mapDomainError(err)))
		return ProposeTimeslotResult{}, mapDomainError(err)
	}

	if created {
		if err := s.sessions.SaveSession(ctx, toRecord(session)); err != nil {
			logger.ErrorContext(ctx, "failed to persist proposal", "error", err)
			return ProposeTimeslotResult{}, err
		}
	}

	logger.InfoContext(ctx, "timeslot proposed", "timeslot_id", slot.ID, "collapsed", !created)
	return ProposeTimeslotResult{
		TimeslotID: slot.ID,
		Created:    created,
		Start:      slot.Range.Start(),
		End:        slot.Range.End(),
	}, nil
}

// RecordVotes replaces the voter's vote set wholesale under the identity
// policy: a stored password must match before any edit, a first-time password
// registers protection, and an unprotected name is open to overwrite.
func (s *SchedulingService) RecordVotes(ctx context.Context, params RecordVotesParams) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("scheduling service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "scheduling", "record_votes", logging.SessionAttr(params.SessionID))

	selections := make([]poll.Selection, 0, len(params.Selections))
	for _, input := range params.Selections {
		selections = append(selections, poll.Selection{TimeslotID: input.TimeslotID, Note: input.Note})
	}

	release := s.locks.acquire(params.SessionID)
	defer release()

	session, err := s.loadAggregate(ctx, params.SessionID)
	if err != nil {
		return err
	}

	if err := session.RecordVotes(params.VoterName, params.Password, selections, s.passwords, s.idGenerator, s.now()); err != nil {
		logger.InfoContext(ctx, "vote rejected", "error_kind", ErrorKind(mapDomainError(err)))
		return mapDomainError(err)
	}

	if err := s.sessions.SaveSession(ctx, toRecord(session)); err != nil {
		logger.ErrorContext(ctx, "failed to persist votes", "error", err)
		return err
	}

	logger.InfoContext(ctx, "votes recorded", "selections", len(selections))
	return nil
}

// RemoveTimeslot deletes a voter-proposed timeslot that has no votes yet,
// honoring the password gate set at proposal time.
func (s *SchedulingService) RemoveTimeslot(ctx context.Context, params RemoveTimeslotParams) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("scheduling service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "scheduling", "remove_timeslot", logging.SessionAttr(params.SessionID))

	release := s.locks.acquire(params.SessionID)
	defer release()

	session, err := s.loadAggregate(ctx, params.SessionID)
	if err != nil {
		return err
	}

	if err := session.RemoveTimeslot(params.TimeslotID, params.Password, s.passwords, s.now()); err != nil {
		logger.InfoContext(ctx, "removal rejected", "error_kind", ErrorKind(mapDomainError(err)))
		return mapDomainError(err)
	}

	if err := s.sessions.SaveSession(ctx, toRecord(session)); err != nil {
		logger.ErrorContext(ctx, "failed to persist removal", "error", err)
		return err
	}

	logger.InfoContext(ctx, "timeslot removed", "timeslot_id", params.TimeslotID)
	return nil
}

// AggregateStats returns cross-session counts for the operational dashboard.
func (s *SchedulingService) AggregateStats(ctx context.Context) (Stats, error) {
	if s == nil || s.stats == nil {
		return Stats{}, fmt.Errorf("stats reader not configured")
	}

	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalSessions:  stats.TotalSessions,
		TotalTimeslots: stats.TotalTimeslots,
		TotalVotes:     stats.TotalVotes,
	}, nil
}

func (s *SchedulingService) loadAggregate(ctx context.Context, sessionID string) (*poll.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNotFound
	}

	record, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return toAggregate(record)
}

// mapDomainError translates domain sentinels into the service's error surface.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, poll.ErrSessionExpired):
		return ErrSessionExpired
	case errors.Is(err, poll.ErrPasswordRequired):
		return ErrPasswordRequired
	case errors.Is(err, poll.ErrInvalidPassword):
		return ErrInvalidPassword
	case errors.Is(err, poll.ErrProposalsNotAllowed):
		return ErrProposalsNotAllowed
	case errors.Is(err, poll.ErrOutsideAllowedWindow):
		return ErrOutsideAllowedWindow
	case errors.Is(err, poll.ErrDayNotAllowed):
		return ErrDayNotAllowed
	case errors.Is(err, poll.ErrDuplicateTimeslot):
		return ErrDuplicateTimeslot
	case errors.Is(err, poll.ErrUnknownTimeslot):
		return ErrUnknownTimeslot
	case errors.Is(err, poll.ErrTimeslotHasVotes):
		return ErrTimeslotHasVotes
	case errors.Is(err, poll.ErrEmptyVoterName):
		vErr := &ValidationError{}
		vErr.add("voter_name", "voter name is required")
		return vErr
	case errors.Is(err, poll.ErrEmptySelection):
		vErr := &ValidationError{}
		vErr.add("votes", "at least one timeslot must be selected")
		return vErr
	case errors.Is(err, poll.ErrInvalidRange):
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	case errors.Is(err, poll.ErrInvalidRules):
		vErr := &ValidationError{}
		vErr.add("rules", err.Error())
		return vErr
	}

	return err
}
