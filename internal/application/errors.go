package application

import "errors"

var (
	// ErrNotFound is returned when the requested session does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrUnknownTimeslot is returned when a request references a timeslot outside the session.
	ErrUnknownTimeslot = errors.New("application: unknown timeslot")
	// ErrSessionExpired is returned when a mutating operation reaches an expired session.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrPasswordRequired is returned when editing a password-protected record without a password.
	ErrPasswordRequired = errors.New("application: password required")
	// ErrInvalidPassword is returned when the supplied password does not match.
	ErrInvalidPassword = errors.New("application: invalid password")
	// ErrProposalsNotAllowed is returned when a fixed session receives a timeslot proposal.
	ErrProposalsNotAllowed = errors.New("application: proposals not allowed")
	// ErrOutsideAllowedWindow is returned when a proposal violates the session's time window.
	ErrOutsideAllowedWindow = errors.New("application: outside allowed window")
	// ErrDayNotAllowed is returned when a proposal lands outside the weekly pattern.
	ErrDayNotAllowed = errors.New("application: day not allowed")
	// ErrDuplicateTimeslot is returned when fixed creation repeats a (start, end) pair.
	ErrDuplicateTimeslot = errors.New("application: duplicate timeslot")
	// ErrTimeslotHasVotes is returned when removal targets a timeslot with recorded votes.
	ErrTimeslotHasVotes = errors.New("application: timeslot has votes")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
