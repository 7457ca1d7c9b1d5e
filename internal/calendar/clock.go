package calendar

import "time"

// Clock provides the current time. Core packages never call time.Now
// directly; the CLI and daemon inject SystemClock, tests inject FixedClock.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the actual system time.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time { return c.T }

// DateClock returns a clock pinned to noon of d in loc.
func DateClock(d Date, loc *time.Location) FixedClock {
	return FixedClock{T: d.Time(loc).Add(12 * time.Hour)}
}

// Today returns the current calendar date of c in loc.
func Today(c Clock, loc *time.Location) Date {
	return FromTime(c.Now(), loc)
}
