package poll

import "time"

// TimeRange is a half-open interval [Start, End) on the canonical UTC timeline.
// All stored and compared instants use this single linear representation; any
// local-calendar form is converted by the caller before it reaches this package.
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange constructs a range, rejecting empty or inverted intervals.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, ErrInvalidRange
	}
	return TimeRange{start: start.UTC(), end: end.UTC()}, nil
}

// Start returns the inclusive lower bound.
func (r TimeRange) Start() time.Time { return r.start }

// End returns the exclusive upper bound.
func (r TimeRange) End() time.Time { return r.end }

// IsZero reports whether the range was never constructed.
func (r TimeRange) IsZero() bool { return r.start.IsZero() && r.end.IsZero() }

// Overlaps reports whether the two half-open intervals share any instant.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// Contains reports whether the instant falls inside the half-open interval.
func (r TimeRange) Contains(instant time.Time) bool {
	return !instant.Before(r.start) && instant.Before(r.end)
}

// Equal reports whether both bounds coincide.
func (r TimeRange) Equal(other TimeRange) bool {
	return r.start.Equal(other.start) && r.end.Equal(other.end)
}

// DurationMinutes returns the interval length in whole minutes.
func (r TimeRange) DurationMinutes() int {
	return int(r.end.Sub(r.start) / time.Minute)
}

// ClampedToDay intersects the range with the 24-hour day beginning at dayStart.
// The second return value is false when the range and the day do not overlap.
func (r TimeRange) ClampedToDay(dayStart time.Time) (TimeRange, bool) {
	dayEnd := dayStart.Add(24 * time.Hour)

	start := r.start
	if start.Before(dayStart) {
		start = dayStart
	}
	end := r.end
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !start.Before(end) {
		return TimeRange{}, false
	}
	return TimeRange{start: start.UTC(), end: end.UTC()}, true
}
