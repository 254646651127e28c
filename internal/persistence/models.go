package persistence

import "time"

// Session is the aggregate record stored and loaded as one unit: the session
// row, its ordered timeslots, their votes, and the per-session voter records.
// There are no partial loads.
type Session struct {
	ID          string
	Title       string
	CreatorName string
	Shape       string
	Rules       RulesPayload
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	Timeslots   []Timeslot
	Voters      []Voter
}

// RulesPayload carries the shape-specific constraint configuration. Fields
// unused by a shape stay zero.
type RulesPayload struct {
	Date        *time.Time
	MinTime     string
	MaxTime     string
	AllowedDays []int
}

// Timeslot is one candidate window embedded in its session record. Position
// preserves insertion order across reloads.
type Timeslot struct {
	ID           string
	SessionID    string
	Start        time.Time
	End          time.Time
	CreatedBy    string
	PasswordHash string
	Position     int
	Votes        []Vote
}

// Vote is one voter's selection embedded in its timeslot record.
type Vote struct {
	ID         string
	TimeslotID string
	VoterName  string
	Note       string
	CastAt     time.Time
}

// Voter is the per-session identity record backing the edit-protection policy.
type Voter struct {
	SessionID    string
	Name         string
	PasswordHash string
	JoinedAt     time.Time
}

// Stats aggregates counts across all sessions for the operational dashboard.
type Stats struct {
	TotalSessions  int
	TotalTimeslots int
	TotalVotes     int
}
