// Package ledger merges logged and planned expenses over a date window.
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/recurrence"
)

// PlannedNotePrefix marks entries derived from planned expense rules.
const PlannedNotePrefix = "(Planned) "

// Entry is one expense inside the window, either logged or planned.
type Entry struct {
	ID         string
	Date       calendar.Date
	Note       string
	Amount     decimal.Decimal
	CategoryID string
	Planned    bool
	RuleID     string
}

// Result is the outcome of Aggregate.
type Result struct {
	Window  calendar.Range
	Entries []Entry
	// Totals maps category id to the summed amount. Categories without
	// entries are absent.
	Totals map[string]decimal.Decimal
}

// Total returns the sum of every entry.
func (r Result) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range r.Entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Empty reports whether the window holds no entries.
func (r Result) Empty() bool { return len(r.Entries) == 0 }

// Logged returns only the logged entries.
func (r Result) Logged() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.Planned {
			out = append(out, e)
		}
	}
	return out
}

// PlannedID returns the id of a planned occurrence.
func PlannedID(ruleID string, d calendar.Date) string {
	return ruleID + "-" + d.Key()
}

// Occurrences expands one planned rule inside window into entries.
func Occurrences(fe model.FutureExpense, window calendar.Range) ([]Entry, error) {
	var out []Entry
	for d, err := range recurrence.Occurrences(fe.Rule(), window) {
		if err != nil {
			return nil, fmt.Errorf("expand planned expense %s: %w", fe.ID, err)
		}
		out = append(out, plannedEntry(fe, d))
	}
	return out, nil
}

func plannedEntry(fe model.FutureExpense, d calendar.Date) Entry {
	return Entry{
		ID:         PlannedID(fe.ID, d),
		Date:       d,
		Note:       PlannedNotePrefix + fe.Note,
		Amount:     fe.Amount,
		CategoryID: fe.CategoryID,
		Planned:    true,
		RuleID:     fe.ID,
	}
}

// Aggregate merges the logged expenses of daily whose date key falls inside
// window with every occurrence of rules inside window. Entries are ordered
// by date; on the same date logged entries come first, in their stored
// order, followed by planned ones in rule order. Malformed date keys are
// skipped. Aggregate does not modify its inputs.
func Aggregate(daily model.DailyLedger, rules []model.FutureExpense, window calendar.Range) (Result, error) {
	res := Result{Window: window, Totals: make(map[string]decimal.Decimal)}
	if window.Empty() {
		return res, nil
	}

	dayKeys := make([]string, 0, len(daily))
	for key := range daily {
		if !window.ContainsKey(key) || !calendar.IsKey(key) {
			continue
		}
		dayKeys = append(dayKeys, key)
	}
	sort.Strings(dayKeys)

	for _, key := range dayKeys {
		d := calendar.MustParse(key)
		for _, exp := range daily[key] {
			res.Entries = append(res.Entries, Entry{
				ID:         exp.ID,
				Date:       d,
				Note:       exp.Note,
				Amount:     exp.Amount,
				CategoryID: exp.CategoryID,
			})
		}
	}

	for _, fe := range rules {
		planned, err := Occurrences(fe, window)
		if err != nil {
			return Result{}, err
		}
		res.Entries = append(res.Entries, planned...)
	}

	sort.SliceStable(res.Entries, func(i, j int) bool {
		return res.Entries[i].Date.Before(res.Entries[j].Date)
	})

	for _, e := range res.Entries {
		res.Totals[e.CategoryID] = res.Totals[e.CategoryID].Add(e.Amount)
	}
	return res, nil
}
