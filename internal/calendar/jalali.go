// Package calendar converts between the Jalali (Persian) civil calendar used
// by clients and the canonical UTC timeline the core stores. The conversion is
// the only calendar-aware code in the repository; rule logic never depends on
// which local calendar a caller uses.
//
// The arithmetic follows the Behrooz Birashk algorithm as popularized by the
// jalaali ecosystem, valid for Jalali years 1178 through 3177.
package calendar

import (
	"fmt"
	"time"
)

// Date is a Jalali civil date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// breakYears marks the irregular leap-cycle boundaries of the Jalali calendar.
var breakYears = []int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181, 1210,
	1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

// Valid reports whether the date names a real day of the Jalali calendar.
func (d Date) Valid() bool {
	if d.Year < breakYears[0]+62 || d.Year >= breakYears[len(breakYears)-1] {
		return false
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= MonthLength(d.Year, d.Month)
}

// String renders the date as "YYYY/MM/DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Time resolves the civil date plus a wall-clock time of day, interpreted in
// loc, to a canonical UTC instant. A nil loc means UTC.
func (d Date) Time(hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	gy, gm, gd := d.Gregorian()
	return time.Date(gy, gm, gd, hour, minute, 0, 0, loc).UTC()
}

// Gregorian converts the Jalali date to its Gregorian equivalent.
func (d Date) Gregorian() (int, time.Month, int) {
	gy, gm, gd := d2g(j2d(d.Year, d.Month, d.Day))
	return gy, time.Month(gm), gd
}

// FromGregorian converts a Gregorian calendar date to Jalali.
func FromGregorian(year int, month time.Month, day int) Date {
	jy, jm, jd := d2j(g2d(year, int(month), day))
	return Date{Year: jy, Month: jm, Day: jd}
}

// FromTime decomposes a canonical instant into the Jalali civil date and
// wall-clock time of day it displays as in loc. A nil loc means UTC.
func FromTime(t time.Time, loc *time.Location) (Date, int, int) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return FromGregorian(local.Date()), local.Hour(), local.Minute()
}

// IsLeapYear reports whether the Jalali year has 366 days.
func IsLeapYear(year int) bool {
	leap, _, _ := jalCal(year)
	return leap == 0
}

// MonthLength returns the number of days in the given Jalali month.
func MonthLength(year, month int) int {
	switch {
	case month <= 6:
		return 31
	case month <= 11:
		return 30
	case IsLeapYear(year):
		return 30
	default:
		return 29
	}
}

// jalCal computes the leap-year offset of jy within its 33-year cycle, the
// Gregorian year its Farvardin 1 falls in, and the March day of that Nowruz.
// leap == 0 marks a leap year.
func jalCal(jy int) (leap, gy, march int) {
	gy = jy + 621
	leapJ := -14
	jp := breakYears[0]

	jump := 0
	for i := 1; i < len(breakYears); i++ {
		jm := breakYears[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + jump%33/4
		jp = jm
	}
	n := jy - jp

	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}

	leapG := gy/4 - (gy/100+1)*3/4 - 150
	march = 20 + leapJ - leapG

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap = ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}
	return leap, gy, march
}

// j2d converts a Jalali date to its Julian day number.
func j2d(jy, jm, jd int) int {
	_, gy, march := jalCal(jy)
	return g2d(gy, 3, march) + (jm-1)*31 - jm/7*(jm-7) + jd - 1
}

// d2j converts a Julian day number to a Jalali date.
func d2j(jdn int) (jy, jm, jd int) {
	gy, _, _ := d2g(jdn)
	jy = gy - 621
	leap, _, march := jalCal(jy)
	k := jdn - g2d(gy, 3, march)

	if k >= 0 {
		if k <= 185 {
			return jy, 1 + k/31, k%31 + 1
		}
		k -= 186
	} else {
		jy--
		k += 179
		if leap == 1 {
			k++
		}
	}
	return jy, 7 + k/30, k%30 + 1
}

// g2d converts a Gregorian date to its Julian day number.
func g2d(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 + (153*((gm+9)%12)+2)/5 + gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

// d2g converts a Julian day number to a Gregorian date.
func d2g(jdn int) (gy, gm, gd int) {
	j := 4*jdn + 139361631
	j += (4*jdn+183187720)/146097*3/4*4 - 3908
	i := j%1461/4*5 + 308
	gd = i%153/5 + 1
	gm = i/153%12 + 1
	gy = j/1461 - 100100 + (8-gm)/6
	return gy, gm, gd
}
