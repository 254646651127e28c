package calendar

import (
	"testing"
	"time"
)

func TestFromGregorian(t *testing.T) {
	t.Parallel()

	cases := []struct {
		gy   int
		gm   time.Month
		gd   int
		want Date
	}{
		{1981, time.August, 17, Date{1360, 5, 26}},
		{2013, time.January, 10, Date{1391, 10, 21}},
		{2014, time.August, 4, Date{1393, 5, 13}},
		{2024, time.March, 10, Date{1402, 12, 20}},
		{2024, time.March, 20, Date{1403, 1, 1}},
	}

	for _, tc := range cases {
		got := FromGregorian(tc.gy, tc.gm, tc.gd)
		if got != tc.want {
			t.Errorf("FromGregorian(%d-%02d-%02d) = %v, want %v", tc.gy, tc.gm, tc.gd, got, tc.want)
		}
	}
}

func TestGregorianRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []Date{
		{1360, 5, 26},
		{1391, 10, 21},
		{1402, 12, 20},
		{1403, 1, 1},
		{1403, 12, 30}, // leap-year Esfand 30
	}

	for _, d := range cases {
		gy, gm, gd := d.Gregorian()
		if got := FromGregorian(gy, gm, gd); got != d {
			t.Errorf("round trip of %v via %d-%02d-%02d yielded %v", d, gy, gm, gd, got)
		}
	}
}

func TestIsLeapYear(t *testing.T) {
	t.Parallel()

	cases := map[int]bool{
		1391: true,
		1393: false,
		1394: false,
		1395: true,
		1402: false,
		1403: true,
	}

	for year, want := range cases {
		if got := IsLeapYear(year); got != want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", year, got, want)
		}
	}
}

func TestMonthLength(t *testing.T) {
	t.Parallel()

	if got := MonthLength(1402, 1); got != 31 {
		t.Errorf("Farvardin should have 31 days, got %d", got)
	}
	if got := MonthLength(1402, 7); got != 30 {
		t.Errorf("Mehr should have 30 days, got %d", got)
	}
	if got := MonthLength(1402, 12); got != 29 {
		t.Errorf("Esfand 1402 should have 29 days, got %d", got)
	}
	if got := MonthLength(1403, 12); got != 30 {
		t.Errorf("Esfand 1403 should have 30 days, got %d", got)
	}
}

func TestDateValid(t *testing.T) {
	t.Parallel()

	if !(Date{1402, 12, 29}).Valid() {
		t.Error("Esfand 29 1402 should be valid")
	}
	if (Date{1402, 12, 30}).Valid() {
		t.Error("Esfand 30 1402 should be invalid in a common year")
	}
	if (Date{1402, 13, 1}).Valid() {
		t.Error("month 13 should be invalid")
	}
	if (Date{1402, 0, 1}).Valid() || (Date{1402, 1, 0}).Valid() {
		t.Error("zero month or day should be invalid")
	}
}

func TestTimeConversionPair(t *testing.T) {
	t.Parallel()

	tehran := time.FixedZone("Asia/Tehran", int(3*time.Hour+30*time.Minute)/int(time.Second))

	instant := Date{1402, 12, 20}.Time(10, 30, tehran)
	if want := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC); !instant.Equal(want) {
		t.Fatalf("Time() = %v, want %v", instant, want)
	}

	date, hour, minute := FromTime(instant, tehran)
	if date != (Date{1402, 12, 20}) || hour != 10 || minute != 30 {
		t.Fatalf("FromTime() = %v %02d:%02d, want 1402/12/20 10:30", date, hour, minute)
	}

	// A nil location falls back to UTC on both sides.
	utcInstant := Date{1402, 12, 20}.Time(10, 30, nil)
	date, hour, minute = FromTime(utcInstant, nil)
	if date != (Date{1402, 12, 20}) || hour != 10 || minute != 30 {
		t.Fatalf("UTC round trip = %v %02d:%02d", date, hour, minute)
	}
}
