// Package dateutil implements the flexible date input accepted by the holiday
// workflow and the display formatting used in replies. Dates are persisted as
// ISO strings ("2006-01-02", RFC3339 for timestamps) and rendered to users in
// the day-first "02.01.2006" style.
package dateutil

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidDate is returned for unparseable input and for impossible
// calendar dates (day 31 in a 30-day month, Feb 29 in a non-leap year).
var ErrInvalidDate = errors.New("invalid date")

const (
	isoDate     = "2006-01-02"
	displayDate = "02.01.2006"
	displayTime = "02.01.2006 15:04"
)

// ParseFlexibleDate parses a user-typed date relative to now.
//
// Accepted shapes, with "." or whitespace as separators and optional leading
// zeros:
//
//	"24"            day only
//	"15.08", "15 08"    day and month
//	"25.12.2025", "25 12 2025"  full date
//
// When the year is omitted the soonest future occurrence wins: a day-only
// value that has already passed this month rolls to the next month, and a
// day+month that has already passed this year rolls to the next year. Today
// itself has not "passed" and resolves to today.
func ParseFlexibleDate(s string, now time.Time) (time.Time, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
	if len(fields) == 0 || len(fields) > 3 {
		return time.Time{}, ErrInvalidDate
	}

	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return time.Time{}, ErrInvalidDate
		}
		nums[i] = n
	}

	today := Midnight(now)

	switch len(nums) {
	case 1: // day only
		day := nums[0]
		y, m := today.Year(), today.Month()
		if day < today.Day() {
			if m == time.December {
				m = time.January
				y++
			} else {
				m++
			}
		}
		return makeDate(y, m, day, now.Location())

	case 2: // day and month
		day, month := nums[0], nums[1]
		d, err := makeDate(today.Year(), time.Month(month), day, now.Location())
		if err != nil {
			return time.Time{}, err
		}
		if d.Before(today) {
			return makeDate(today.Year()+1, time.Month(month), day, now.Location())
		}
		return d, nil

	default: // full date
		return makeDate(nums[2], time.Month(nums[1]), nums[0], now.Location())
	}
}

// makeDate builds a midnight date and rejects values that time.Date would
// silently normalize (Feb 31 becomes Mar 3 otherwise).
func makeDate(y int, m time.Month, d int, loc *time.Location) (time.Time, error) {
	if m < time.January || m > time.December || d < 1 || d > 31 {
		return time.Time{}, ErrInvalidDate
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Midnight truncates t to the start of its day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ISODate renders t in the storage format.
func ISODate(t time.Time) string { return t.Format(isoDate) }

// ParseISODate parses a stored "2006-01-02" value.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// FormatDate renders a stored ISO date for display. Unparseable values are
// returned unchanged rather than failing the caller.
func FormatDate(iso string) string {
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return iso
	}
	return t.Format(displayDate)
}

// FormatDateTime renders a stored RFC3339 timestamp for display, falling back
// to the raw value on parse failure.
func FormatDateTime(v string) string {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return v
	}
	return t.Format(displayTime)
}
