package poll

import (
	"fmt"
	"time"
)

// Shape identifies how a session generates its candidate timeslots. The wire
// values match the client contract of the original deployment.
type Shape string

const (
	// ShapeFixed sessions carry a closed timeslot list chosen at creation.
	ShapeFixed Shape = "fixed"
	// ShapeDateRange sessions cover a single day with an open time-of-day window.
	ShapeDateRange Shape = "dynamic"
	// ShapeWeekly sessions recur on a weekday set with an open time-of-day window.
	ShapeWeekly Shape = "weekly"
)

// WallClockZone is the civil time zone in which wall-clock windows, weekday
// membership, and calendar-day checks are interpreted. The deployment serves a
// single market; Iran has kept a fixed UTC+03:30 offset since dropping
// daylight saving in 2022, so a fixed zone is exact.
var WallClockZone = time.FixedZone("UTC+03:30", 3*3600+30*60)

// MinuteOfDay is a wall-clock time-of-day expressed as minutes since midnight.
// It carries no timezone; callers interpret it against a reference day.
type MinuteOfDay int

// ParseMinuteOfDay parses an "HH:MM" wall-clock value.
func ParseMinuteOfDay(value string) (MinuteOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("poll: malformed time of day %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("poll: time of day %q out of range", value)
	}
	return MinuteOfDay(hour*60 + minute), nil
}

// String renders the value back to "HH:MM".
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Rules validates whether voters may append timeslots to a session. One
// implementation exists per shape; the aggregate selects it once at the
// boundary instead of branching on shape strings.
type Rules interface {
	Shape() Shape
	// ValidateProposal decides whether the candidate may be added. The candidate
	// is expressed on the canonical UTC timeline; wall-clock and calendar-day
	// checks are made against the civil day it falls on in WallClockZone.
	ValidateProposal(candidate TimeRange) error
	// Describe summarizes the constraint for read projections.
	Describe() string
}

// FixedRules closes the timeslot set after creation.
type FixedRules struct{}

func (FixedRules) Shape() Shape { return ShapeFixed }

func (FixedRules) ValidateProposal(TimeRange) error { return ErrProposalsNotAllowed }

func (FixedRules) Describe() string { return "fixed timeslot list" }

// DateRangeRules restricts proposals to a single configured day and a
// [MinTime, MaxTime] wall-clock window. MaxTime is inclusive for a proposal's
// end but a start equal to MaxTime yields zero duration inside the window and
// is rejected.
type DateRangeRules struct {
	Date    time.Time // midnight UTC of the configured day
	MinTime MinuteOfDay
	MaxTime MinuteOfDay
}

// NewDateRangeRules validates internal consistency of the payload.
func NewDateRangeRules(date time.Time, minTime, maxTime MinuteOfDay) (DateRangeRules, error) {
	if date.IsZero() {
		return DateRangeRules{}, fmt.Errorf("%w: date is required", ErrInvalidRules)
	}
	if minTime >= maxTime {
		return DateRangeRules{}, fmt.Errorf("%w: min time %s must be before max time %s", ErrInvalidRules, minTime, maxTime)
	}
	return DateRangeRules{Date: startOfDayUTC(date), MinTime: minTime, MaxTime: maxTime}, nil
}

func (DateRangeRules) Shape() Shape { return ShapeDateRange }

func (r DateRangeRules) ValidateProposal(candidate TimeRange) error {
	cy, cm, cd := candidate.Start().In(WallClockZone).Date()
	ry, rm, rd := r.Date.UTC().Date()
	if cy != ry || cm != rm || cd != rd {
		return ErrOutsideAllowedWindow
	}
	return validateWindow(candidate, r.MinTime, r.MaxTime)
}

func (r DateRangeRules) Describe() string {
	return fmt.Sprintf("%s between %s and %s", r.Date.Format("2006-01-02"), r.MinTime, r.MaxTime)
}

// WeeklyRules restricts proposals to a weekday set and a wall-clock window.
type WeeklyRules struct {
	AllowedDays []time.Weekday
	MinTime     MinuteOfDay
	MaxTime     MinuteOfDay
}

// NewWeeklyRules validates internal consistency of the payload.
func NewWeeklyRules(allowedDays []time.Weekday, minTime, maxTime MinuteOfDay) (WeeklyRules, error) {
	if len(allowedDays) == 0 {
		return WeeklyRules{}, fmt.Errorf("%w: at least one weekday is required", ErrInvalidRules)
	}
	if minTime >= maxTime {
		return WeeklyRules{}, fmt.Errorf("%w: min time %s must be before max time %s", ErrInvalidRules, minTime, maxTime)
	}
	seen := make(map[time.Weekday]struct{}, len(allowedDays))
	days := make([]time.Weekday, 0, len(allowedDays))
	for _, day := range allowedDays {
		if day < time.Sunday || day > time.Saturday {
			return WeeklyRules{}, fmt.Errorf("%w: weekday %d out of range", ErrInvalidRules, day)
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return WeeklyRules{AllowedDays: days, MinTime: minTime, MaxTime: maxTime}, nil
}

func (WeeklyRules) Shape() Shape { return ShapeWeekly }

func (r WeeklyRules) ValidateProposal(candidate TimeRange) error {
	weekday := candidate.Start().In(WallClockZone).Weekday()
	allowed := false
	for _, day := range r.AllowedDays {
		if weekday == day {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrDayNotAllowed
	}
	return validateWindow(candidate, r.MinTime, r.MaxTime)
}

func (r WeeklyRules) Describe() string {
	return fmt.Sprintf("weekdays %v between %s and %s", r.AllowedDays, r.MinTime, r.MaxTime)
}

// validateWindow checks the candidate against [minTime, maxTime] measured in
// minutes from midnight of the candidate's civil day in WallClockZone. The
// candidate's end may reach the closing minute exactly; its start may not.
func validateWindow(candidate TimeRange, minTime, maxTime MinuteOfDay) error {
	dayStart := startOfWallClockDay(candidate.Start())
	startMin := minutesInto(dayStart, candidate.Start())
	endMin := minutesInto(dayStart, candidate.End())

	if startMin < int(minTime) || endMin > int(maxTime) || startMin >= int(maxTime) {
		return ErrOutsideAllowedWindow
	}
	return nil
}

func minutesInto(dayStart, instant time.Time) int {
	return int(instant.Sub(dayStart) / time.Minute)
}

// startOfDayUTC normalizes a civil-day label carried as a UTC timestamp.
func startOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// startOfWallClockDay returns midnight of the civil day the instant falls on
// in WallClockZone.
func startOfWallClockDay(t time.Time) time.Time {
	y, m, d := t.In(WallClockZone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, WallClockZone)
}

// FirstOccurrence returns midnight, in WallClockZone, of the first civil date
// falling on the requested weekday, on or after the reference instant. Weekly
// proposals are rebased onto this date so repeated submissions land on real
// calendar instances near the session's creation.
func FirstOccurrence(day time.Weekday, onOrAfter time.Time) time.Time {
	base := startOfWallClockDay(onOrAfter)
	diff := (int(day) - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, diff)
}
