package poll

import "errors"

var (
	// ErrInvalidRange is returned when a time range does not satisfy start < end.
	ErrInvalidRange = errors.New("poll: start must be before end")
	// ErrInvalidRules is returned when a rules payload is inconsistent for its shape.
	ErrInvalidRules = errors.New("poll: invalid session rules")
	// ErrProposalsNotAllowed is returned when a fixed session receives a proposal.
	ErrProposalsNotAllowed = errors.New("poll: session does not accept proposals")
	// ErrOutsideAllowedWindow is returned when a proposal violates the time-of-day window.
	ErrOutsideAllowedWindow = errors.New("poll: proposal outside allowed window")
	// ErrDayNotAllowed is returned when a proposal lands on a weekday outside the pattern.
	ErrDayNotAllowed = errors.New("poll: day not allowed by weekly pattern")
	// ErrDuplicateTimeslot is returned when fixed creation repeats a (start, end) pair.
	ErrDuplicateTimeslot = errors.New("poll: duplicate timeslot")
	// ErrSessionExpired is returned when a mutating operation reaches an expired session.
	ErrSessionExpired = errors.New("poll: session expired")
	// ErrUnknownTimeslot is returned when a vote references a timeslot outside the session.
	ErrUnknownTimeslot = errors.New("poll: unknown timeslot")
	// ErrEmptyVoterName is returned when a vote submission carries no voter name.
	ErrEmptyVoterName = errors.New("poll: voter name is required")
	// ErrEmptySelection is returned when a vote submission selects no timeslots.
	ErrEmptySelection = errors.New("poll: at least one timeslot must be selected")
	// ErrPasswordRequired is returned when a protected voter record is edited without a password.
	ErrPasswordRequired = errors.New("poll: password required")
	// ErrInvalidPassword is returned when the supplied password does not match the stored hash.
	ErrInvalidPassword = errors.New("poll: invalid password")
	// ErrTimeslotHasVotes is returned when removal targets a timeslot that already collected votes.
	ErrTimeslotHasVotes = errors.New("poll: timeslot has votes")
)
