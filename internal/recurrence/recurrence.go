// Package recurrence expands recurring date rules into concrete dates.
//
// Every caller that walks a schedule (pay-cycle boundaries as well as planned
// expenses) goes through Step so that all of them agree on where the n-th
// occurrence of a rule falls.
package recurrence

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/theirongolddev/paycycle/internal/calendar"
)

// MaxSteps bounds a single expansion. It comfortably covers a weekly rule
// walked across a few centuries.
const MaxSteps = 20_000

var (
	// ErrNoProgress is returned when stepping does not advance the date.
	ErrNoProgress = errors.New("recurrence: step did not advance")
	// ErrTooManySteps is returned when an expansion exceeds MaxSteps.
	ErrTooManySteps = errors.New("recurrence: too many steps")
	// ErrUnknownFrequency is returned for a frequency outside the known set.
	ErrUnknownFrequency = errors.New("recurrence: unknown frequency")
)

// Frequency is the stepping unit of a rule.
type Frequency string

const (
	Once     Frequency = "once"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
)

// Frequencies lists every frequency in display order.
var Frequencies = []Frequency{Once, Weekly, Biweekly, Monthly, Yearly}

// ParseFrequency parses a frequency name case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Frequencies, f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
	}
	return f, nil
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return slices.Contains(Frequencies, f)
}

// Step returns the n-th occurrence of a schedule anchored at start. Months
// and years are counted from start itself, so a rule starting on the 31st
// lands on the 31st whenever the month has one and on the month's last day
// otherwise. Once ignores n.
func Step(start calendar.Date, freq Frequency, n int) calendar.Date {
	switch freq {
	case Weekly:
		return start.AddDays(7 * n)
	case Biweekly:
		return start.AddDays(14 * n)
	case Monthly:
		return start.AddMonths(n)
	case Yearly:
		return start.AddYears(n)
	default:
		return start
	}
}

// Rule is a recurring schedule. End, when set, is inclusive.
type Rule struct {
	Start     calendar.Date
	Frequency Frequency
	End       *calendar.Date
}

// stepFunc computes the n-th occurrence. Tests swap it to exercise the
// termination guards.
type stepFunc func(start calendar.Date, freq Frequency, n int) calendar.Date

// Occurrences yields the dates of rule that fall inside window and on or
// before rule.End. The sequence is restartable. An error is yielded once, as
// the final element, when the rule cannot be expanded.
func Occurrences(rule Rule, window calendar.Range) iter.Seq2[calendar.Date, error] {
	return occurrences(rule, window, Step)
}

func occurrences(rule Rule, window calendar.Range, step stepFunc) iter.Seq2[calendar.Date, error] {
	return func(yield func(calendar.Date, error) bool) {
		if !rule.Frequency.Valid() {
			yield(calendar.Date{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, rule.Frequency))
			return
		}
		if rule.Start.IsZero() || window.Empty() {
			return
		}

		limit := window.To
		if rule.End != nil && rule.End.Before(limit) {
			limit = *rule.End
		}

		if rule.Frequency == Once {
			if window.Contains(rule.Start) && !rule.Start.After(limit) {
				yield(rule.Start, nil)
			}
			return
		}

		first := skipTo(rule.Start, rule.Frequency, window.From)
		prev := step(rule.Start, rule.Frequency, first)
		for n := first; ; n++ {
			if n-first > MaxSteps {
				yield(calendar.Date{}, fmt.Errorf("%w: %d from %s", ErrTooManySteps, MaxSteps, rule.Start))
				return
			}
			d := step(rule.Start, rule.Frequency, n)
			if n > first && !d.After(prev) {
				yield(calendar.Date{}, fmt.Errorf("%w: %s %s at step %d", ErrNoProgress, rule.Frequency, d, n))
				return
			}
			prev = d
			if d.After(limit) {
				return
			}
			if d.Before(window.From) {
				continue
			}
			if !yield(d, nil) {
				return
			}
		}
	}
}

// skipTo returns an occurrence index whose date is not after from, so long
// rules don't walk every step between their start and a distant window.
func skipTo(start calendar.Date, freq Frequency, from calendar.Date) int {
	if !from.After(start) {
		return 0
	}
	var n int
	switch freq {
	case Weekly:
		n = start.DaysUntil(from) / 7
	case Biweekly:
		n = start.DaysUntil(from) / 14
	case Monthly:
		n = (from.Year()-start.Year())*12 + int(from.Month()-start.Month())
	case Yearly:
		n = from.Year() - start.Year()
	}
	for n > 0 && Step(start, freq, n).After(from) {
		n--
	}
	return max(n, 0)
}

// Expand collects Occurrences into a slice.
func Expand(rule Rule, window calendar.Range) ([]calendar.Date, error) {
	var out []calendar.Date
	for d, err := range Occurrences(rule, window) {
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// First returns the first occurrence of rule on or after from, looking no
// further than to.
func First(rule Rule, from, to calendar.Date) (calendar.Date, bool, error) {
	for d, err := range Occurrences(rule, calendar.NewRange(from, to)) {
		if err != nil {
			return calendar.Date{}, false, err
		}
		return d, true, nil
	}
	return calendar.Date{}, false, nil
}
