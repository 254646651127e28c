package testfixtures

import (
	"context"
	"sync"

	"github.com/example/meeting-poll/internal/persistence"
)

// MemorySessionRepository is an in-memory persistence.SessionRepository for
// tests that do not need the SQLite layer. It also satisfies
// persistence.StatsReader.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]persistence.Session
}

var (
	_ persistence.SessionRepository = (*MemorySessionRepository)(nil)
	_ persistence.StatsReader       = (*MemorySessionRepository)(nil)
)

// NewMemorySessionRepository constructs an empty repository, optionally
// seeded with fixtures.
func NewMemorySessionRepository(fixtures ...SessionFixture) *MemorySessionRepository {
	repo := &MemorySessionRepository{sessions: make(map[string]persistence.Session)}
	for _, fixture := range fixtures {
		repo.sessions[fixture.Record.ID] = fixture.Record
	}
	return repo
}

// CreateSession stores a new aggregate, rejecting id collisions.
func (r *MemorySessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.ID]; exists {
		return persistence.ErrDuplicate
	}
	r.sessions[session.ID] = session
	return nil
}

// SaveSession replaces an existing aggregate.
func (r *MemorySessionRepository) SaveSession(ctx context.Context, session persistence.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.ID]; !exists {
		return persistence.ErrNotFound
	}
	r.sessions[session.ID] = session
	return nil
}

// GetSession returns a stored aggregate.
func (r *MemorySessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, exists := r.sessions[id]
	if !exists {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// SessionExists reports whether the id is taken.
func (r *MemorySessionRepository) SessionExists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.sessions[id]
	return exists, nil
}

// Stats counts stored sessions, timeslots, and votes.
func (r *MemorySessionRepository) Stats(ctx context.Context) (persistence.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats persistence.Stats
	stats.TotalSessions = len(r.sessions)
	for _, session := range r.sessions {
		stats.TotalTimeslots += len(session.Timeslots)
		for _, slot := range session.Timeslots {
			stats.TotalVotes += len(slot.Votes)
		}
	}
	return stats, nil
}
