package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/meeting-poll/internal/calendar"
	"github.com/example/meeting-poll/internal/poll"
)

// tehranZone is the offset used for Jalali rendering and input. It is the
// same zone the session rules use for wall-clock checks, so a civil time
// accepted here lands on the civil day the rules will measure it against.
var tehranZone = poll.WallClockZone

// timeRangePayload accepts a candidate window either as UTC instants or as a
// Jalali civil date with wall-clock times. When both forms are present the
// UTC instants win.
type timeRangePayload struct {
	StartUTC   *time.Time `json:"start_utc,omitempty"`
	EndUTC     *time.Time `json:"end_utc,omitempty"`
	JalaliDate string     `json:"jalali_date,omitempty"`
	StartTime  string     `json:"start_time,omitempty"`
	EndTime    string     `json:"end_time,omitempty"`
}

func (p timeRangePayload) resolve() (time.Time, time.Time, error) {
	if p.StartUTC != nil && p.EndUTC != nil {
		return p.StartUTC.UTC(), p.EndUTC.UTC(), nil
	}
	if p.JalaliDate == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either start_utc/end_utc or jalali_date with start_time/end_time is required")
	}

	date, err := parseJalaliDate(p.JalaliDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startHour, startMinute, err := parseClock(p.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_time: %w", err)
	}
	endHour, endMinute, err := parseClock(p.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_time: %w", err)
	}

	start := date.Time(startHour, startMinute, tehranZone)
	end := date.Time(endHour, endMinute, tehranZone)
	return start, end, nil
}

func parseJalaliDate(value string) (calendar.Date, error) {
	var date calendar.Date
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d/%d/%d", &date.Year, &date.Month, &date.Day); err != nil {
		return calendar.Date{}, fmt.Errorf("jalali_date must be YYYY/MM/DD")
	}
	if !date.Valid() {
		return calendar.Date{}, fmt.Errorf("jalali_date %q is not a valid date", value)
	}
	return date, nil
}

func parseClock(value string) (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("must be a wall-clock time HH:MM")
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("must be a wall-clock time HH:MM")
	}
	return hour, minute, nil
}

// jalaliDateString renders a civil calendar day (stored as UTC midnight) as
// its Jalali equivalent.
func jalaliDateString(t time.Time) string {
	return calendar.FromGregorian(t.UTC().Date()).String()
}

// jalaliString renders a UTC instant as "YYYY/MM/DD HH:MM" Tehran time.
func jalaliString(t time.Time) string {
	date, hour, minute := calendar.FromTime(t, tehranZone)
	return fmt.Sprintf("%s %02d:%02d", date, hour, minute)
}
