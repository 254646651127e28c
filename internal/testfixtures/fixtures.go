package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/meeting-poll/internal/persistence"
)

var sessionCounter uint64

var referenceTime = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It is a Sunday, which keeps weekly pattern tests readable.
func ReferenceTime() time.Time {
	return referenceTime
}

// SessionFixture represents a deterministic session record that can be seeded
// into a repository for application or persistence tests.
type SessionFixture struct {
	Record persistence.Session
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a fixed-shape session with two timeslots an hour
// apart on the day after the reference time. Options override the defaults.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("ses%02d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	firstStart := created.Truncate(24 * time.Hour).Add(24*time.Hour + 10*time.Hour)

	fixture := SessionFixture{
		Record: persistence.Session{
			ID:          id,
			Title:       fmt.Sprintf("Session %02d", idx),
			CreatorName: fmt.Sprintf("Creator %02d", idx),
			Shape:       "fixed",
			CreatedAt:   created,
			Timeslots: []persistence.Timeslot{
				{
					ID:        fmt.Sprintf("%s-slot-1", id),
					SessionID: id,
					Start:     firstStart,
					End:       firstStart.Add(time.Hour),
					Position:  0,
				},
				{
					ID:        fmt.Sprintf("%s-slot-2", id),
					SessionID: id,
					Start:     firstStart.Add(24 * time.Hour),
					End:       firstStart.Add(25 * time.Hour),
					Position:  1,
				},
			},
		},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) SessionOption {
	return func(fixture *SessionFixture) {
		fixture.Record.ID = id
		for i := range fixture.Record.Timeslots {
			fixture.Record.Timeslots[i].SessionID = id
		}
	}
}

// WithWeeklyRules turns the fixture into a weekly pattern session without
// initial timeslots.
func WithWeeklyRules(days []int, minTime, maxTime string) SessionOption {
	return func(fixture *SessionFixture) {
		fixture.Record.Shape = "weekly"
		fixture.Record.Rules = persistence.RulesPayload{
			MinTime:     minTime,
			MaxTime:     maxTime,
			AllowedDays: days,
		}
		fixture.Record.Timeslots = nil
	}
}

// WithExpiry sets the session expiry.
func WithExpiry(expiresAt time.Time) SessionOption {
	return func(fixture *SessionFixture) {
		fixture.Record.ExpiresAt = &expiresAt
	}
}

// WithVote appends a vote to the timeslot at the given index and registers the
// voter record.
func WithVote(slotIndex int, voterName, passwordHash string) SessionOption {
	return func(fixture *SessionFixture) {
		if slotIndex < 0 || slotIndex >= len(fixture.Record.Timeslots) {
			return
		}
		slot := &fixture.Record.Timeslots[slotIndex]
		slot.Votes = append(slot.Votes, persistence.Vote{
			ID:         fmt.Sprintf("%s-vote-%d", slot.ID, len(slot.Votes)+1),
			TimeslotID: slot.ID,
			VoterName:  voterName,
			CastAt:     fixture.Record.CreatedAt.Add(time.Hour),
		})
		for _, voter := range fixture.Record.Voters {
			if voter.Name == voterName {
				return
			}
		}
		fixture.Record.Voters = append(fixture.Record.Voters, persistence.Voter{
			SessionID:    fixture.Record.ID,
			Name:         voterName,
			PasswordHash: passwordHash,
			JoinedAt:     fixture.Record.CreatedAt.Add(time.Hour),
		})
	}
}
