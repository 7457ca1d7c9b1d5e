// Package calendar provides civil dates and the canonical YYYY-MM-DD date key.
//
// Every date key persisted or compared by paycycle is produced by Date.Key, so
// lexicographic order of keys always equals chronological order.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// KeyLayout is the zero-padded layout of a date key.
const KeyLayout = "2006-01-02"

// ErrInvalidDate is returned when a string is not a calendar date.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date with no time-of-day or zone. The zero value is the
// "no date" sentinel.
type Date struct {
	t time.Time // always 00:00 UTC
}

// New returns the date for the given year, month and day. Out-of-range values
// are normalized the way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime returns the calendar date of t as observed in loc.
func FromTime(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return New(y, m, d)
}

// Parse parses a YYYY-MM-DD key. RFC 3339 timestamps are accepted as well and
// keep their written date part, which is how older data stored start dates.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(KeyLayout) && s[len(KeyLayout)] == 'T' {
		s = s[:len(KeyLayout)]
	}
	t, err := time.Parse(KeyLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsKey reports whether s is a well-formed, zero-padded date key.
func IsKey(s string) bool {
	if len(s) != len(KeyLayout) {
		return false
	}
	_, err := time.Parse(KeyLayout, s)
	return err == nil
}

// Key returns the zero-padded YYYY-MM-DD form of d.
func (d Date) Key() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(KeyLayout)
}

// String implements fmt.Stringer.
func (d Date) String() string { return d.Key() }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Year returns the year of d.
func (d Date) Year() int { return d.t.Year() }

// Month returns the month of d.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of the month of d.
func (d Date) Day() int { return d.t.Day() }

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths returns d shifted by n calendar months. When the target month is
// shorter than d's day, the result is clamped to the target month's last day
// (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap year).
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := d.Day()
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return New(first.Year(), first.Month(), day)
}

// AddYears returns d shifted by n years, clamping Feb 29 to Feb 28.
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same date.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// DaysUntil returns the number of days from d to o (negative when o is earlier).
// It works on Unix seconds so spans beyond the range of time.Duration stay exact.
func (d Date) DaysUntil(o Date) int {
	return int((o.t.Unix() - d.t.Unix()) / 86400)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// zero Date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
