package calendar

import "fmt"

// Range is an inclusive span of dates [From, To].
type Range struct {
	From Date
	To   Date
}

// NewRange returns the inclusive range between from and to.
func NewRange(from, to Date) Range {
	return Range{From: from, To: to}
}

// Empty reports whether the range contains no dates.
func (r Range) Empty() bool {
	return r.To.Before(r.From)
}

// Contains reports whether d falls inside the range.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// ContainsKey reports whether a date key falls inside the range. It relies on
// keys being zero-padded so that string order equals date order.
func (r Range) ContainsKey(key string) bool {
	return key >= r.From.Key() && key <= r.To.Key()
}

// Days returns the number of dates in the range.
func (r Range) Days() int {
	if r.Empty() {
		return 0
	}
	return r.From.DaysUntil(r.To) + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.From.Key(), r.To.Key())
}
