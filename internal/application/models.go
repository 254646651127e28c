package application

import "time"

// RulesInput carries the shape-specific constraint payload supplied at
// session creation. MinTime and MaxTime are "HH:MM" wall-clock values
// interpreted against the relevant calendar day.
type RulesInput struct {
	Date        *time.Time
	MinTime     string
	MaxTime     string
	AllowedDays []time.Weekday
}

// TimeslotInput captures one caller-provided candidate window.
type TimeslotInput struct {
	Start time.Time
	End   time.Time
}

// CreateSessionParams wraps the data required to create a session.
type CreateSessionParams struct {
	Title       string
	CreatorName string
	Shape       string
	Rules       RulesInput
	Timeslots   []TimeslotInput
	ExpiresAt   *time.Time
}

// CreateSessionResult reports the identifier and shareable link of a new session.
type CreateSessionResult struct {
	ID   string
	Link string
}

// ProposeTimeslotParams wraps the data required to propose a timeslot.
// Password, when set, protects later removal of the proposed slot.
type ProposeTimeslotParams struct {
	SessionID string
	Start     time.Time
	End       time.Time
	CreatedBy string
	Password  string
}

// ProposeTimeslotResult reports the resulting timeslot. Created is false when
// an exact duplicate collapsed into an existing slot.
type ProposeTimeslotResult struct {
	TimeslotID string
	Created    bool
	Start      time.Time
	End        time.Time
}

// SelectionInput references one timeslot in a vote submission.
type SelectionInput struct {
	TimeslotID string
	Note       string
}

// RecordVotesParams wraps one voter's full vote submission. The selection
// replaces the voter's previous vote set wholesale.
type RecordVotesParams struct {
	SessionID  string
	VoterName  string
	Password   string
	Selections []SelectionInput
}

// RemoveTimeslotParams wraps the data required to remove a proposed timeslot.
type RemoveTimeslotParams struct {
	SessionID  string
	TimeslotID string
	Password   string
}

// VoteView is one recorded vote in a session view.
type VoteView struct {
	VoterName string
	Note      string
	CastAt    time.Time
}

// TimeslotView is one candidate window with its tally.
type TimeslotView struct {
	ID        string
	Start     time.Time
	End       time.Time
	CreatedBy string
	VoteCount int
	Votes     []VoteView
}

// SessionView is the read projection returned to transport callers.
type SessionView struct {
	ID           string
	Title        string
	CreatorName  string
	Shape        string
	RulesSummary string
	Rules        RulesInput
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	Timeslots    []TimeslotView
}

// Stats aggregates counts across all sessions.
type Stats struct {
	TotalSessions  int
	TotalTimeslots int
	TotalVotes     int
}
