// Package cycle locates pay-cycle periods relative to a reference date.
package cycle

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/recurrence"
)

// ErrInvalidFrequency is returned for frequencies that cannot repeat.
var ErrInvalidFrequency = errors.New("cycle: invalid cycle frequency")

// Period is one pay cycle, inclusive on both ends. Index is the number of
// whole cycles between the anchor and Start.
type Period struct {
	Start calendar.Date
	End   calendar.Date
	Index int
}

// Range returns the period as a date range.
func (p Period) Range() calendar.Range {
	return calendar.NewRange(p.Start, p.End)
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d calendar.Date) bool {
	return p.Range().Contains(d)
}

// Days returns the length of the period in days.
func (p Period) Days() int {
	return p.Range().Days()
}

// Next returns the period following p.
func (p Period) Next(anchor calendar.Date, freq recurrence.Frequency) Period {
	return nth(anchor, freq, p.Index+1)
}

// Prev returns the period preceding p. ok is false for the first period.
func (p Period) Prev(anchor calendar.Date, freq recurrence.Frequency) (Period, bool) {
	if p.Index == 0 {
		return Period{}, false
	}
	return nth(anchor, freq, p.Index-1), true
}

func (p Period) String() string {
	return fmt.Sprintf("#%d %s..%s", p.Index, p.Start.Key(), p.End.Key())
}

func validate(freq recurrence.Frequency) error {
	switch freq {
	case recurrence.Weekly, recurrence.Biweekly, recurrence.Monthly, recurrence.Yearly:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidFrequency, freq)
}

func nth(anchor calendar.Date, freq recurrence.Frequency, n int) Period {
	return Period{
		Start: recurrence.Step(anchor, freq, n),
		End:   recurrence.Step(anchor, freq, n+1).AddDays(-1),
		Index: n,
	}
}

// Nth returns the n-th period of the schedule anchored at anchor.
func Nth(anchor calendar.Date, freq recurrence.Frequency, n int) (Period, error) {
	if err := validate(freq); err != nil {
		return Period{}, err
	}
	if n < 0 {
		return Period{}, fmt.Errorf("cycle: negative period index %d", n)
	}
	return nth(anchor, freq, n), nil
}

// Locate returns the period containing ref. ok is false when the schedule has
// not started yet (anchor after ref).
func Locate(anchor calendar.Date, freq recurrence.Frequency, ref calendar.Date) (Period, bool, error) {
	if err := validate(freq); err != nil {
		return Period{}, false, err
	}
	if anchor.IsZero() || anchor.After(ref) {
		return Period{}, false, nil
	}

	var start calendar.Date
	for d, err := range recurrence.Occurrences(recurrence.Rule{Start: anchor, Frequency: freq}, calendar.NewRange(ref.AddDays(-400), ref)) {
		if err != nil {
			return Period{}, false, err
		}
		start = d
	}
	if start.IsZero() {
		return Period{}, false, fmt.Errorf("cycle: no boundary found before %s", ref)
	}
	return nth(anchor, freq, index(anchor, freq, start)), true, nil
}

// index recovers the occurrence number of boundary d.
func index(anchor calendar.Date, freq recurrence.Frequency, d calendar.Date) int {
	switch freq {
	case recurrence.Weekly:
		return anchor.DaysUntil(d) / 7
	case recurrence.Biweekly:
		return anchor.DaysUntil(d) / 14
	case recurrence.Monthly:
		return (d.Year()-anchor.Year())*12 + int(d.Month()-anchor.Month())
	case recurrence.Yearly:
		return d.Year() - anchor.Year()
	}
	return 0
}

// LastCompleted returns the most recent period whose last day is on or
// before today: the current period when today is its last day, otherwise the
// one before it.
func LastCompleted(anchor calendar.Date, freq recurrence.Frequency, today calendar.Date) (Period, bool, error) {
	cur, ok, err := Locate(anchor, freq, today)
	if err != nil || !ok {
		return Period{}, false, err
	}
	if !today.Before(cur.End) {
		return cur, true, nil
	}
	prev, ok := cur.Prev(anchor, freq)
	return prev, ok, nil
}

// Remaining returns the number of days left in p after ref, not counting ref.
func (p Period) Remaining(ref calendar.Date) int {
	if ref.After(p.End) {
		return 0
	}
	return ref.DaysUntil(p.End)
}
