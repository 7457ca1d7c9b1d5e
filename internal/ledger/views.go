package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/recurrence"
)

// CategoryAmount is a schema category with its spent amount.
type CategoryAmount struct {
	Category model.Category
	Amount   decimal.Decimal
	Share    float64 // of the breakdown total, 0..1
}

// Breakdown returns the known categories with a positive total, largest
// first. Ties keep schema order.
func Breakdown(schema model.CategorySchema, totals map[string]decimal.Decimal) []CategoryAmount {
	var out []CategoryAmount
	sum := decimal.Zero
	for _, c := range schema.Categories {
		amt, ok := totals[c.ID]
		if !ok || !amt.IsPositive() {
			continue
		}
		out = append(out, CategoryAmount{Category: c, Amount: amt})
		sum = sum.Add(amt)
	}
	if sum.IsPositive() {
		for i := range out {
			out[i].Share = out[i].Amount.Div(sum).InexactFloat64()
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// UpcomingEntry is a planned occurrence together with its profile.
type UpcomingEntry struct {
	ProfileID string
	Entry
}

// Upcoming returns the planned occurrences of every profile in
// [today, today+days], ordered by date then profile id.
func Upcoming(all model.AllFuture, today calendar.Date, days int) ([]UpcomingEntry, error) {
	window := calendar.NewRange(today, today.AddDays(days))
	profileIDs := make([]string, 0, len(all))
	for id := range all {
		profileIDs = append(profileIDs, id)
	}
	sort.Strings(profileIDs)

	var out []UpcomingEntry
	for _, pid := range profileIDs {
		for _, fe := range all[pid] {
			entries, err := Occurrences(fe, window)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				out = append(out, UpcomingEntry{ProfileID: pid, Entry: e})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ProfileID < out[j].ProfileID
	})
	return out, nil
}

// NextPlanned returns the earliest planned occurrence on or after today,
// looking at most horizon days ahead. Ties go to the rule listed first.
func NextPlanned(rules []model.FutureExpense, today calendar.Date, horizon int) (Entry, bool, error) {
	var best Entry
	found := false
	for _, fe := range rules {
		d, ok, err := recurrence.First(fe.Rule(), today, today.AddDays(horizon))
		if err != nil {
			return Entry{}, false, err
		}
		if !ok || (found && !d.Before(best.Date)) {
			continue
		}
		best = plannedEntry(fe, d)
		found = true
	}
	return best, found, nil
}

// RecentEntry is a logged expense together with the profile it was logged in.
type RecentEntry struct {
	ProfileID   string
	ProfileName string
	Entry
}

// Recent returns the n most recently dated logged expenses across every
// profile, newest first. Within a day the expense logged last comes first;
// ties between profiles go by profile id. Malformed date keys are skipped.
func Recent(all model.AllDaily, profiles []model.CycleProfile, n int) []RecentEntry {
	if n <= 0 {
		return nil
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Name
	}

	var out []RecentEntry
	for pid, daily := range all {
		name, ok := names[pid]
		if !ok {
			name = pid
		}
		for key, exps := range daily {
			d, err := calendar.Parse(key)
			if err != nil || !calendar.IsKey(key) {
				continue
			}
			for i := len(exps) - 1; i >= 0; i-- {
				e := exps[i]
				out = append(out, RecentEntry{
					ProfileID:   pid,
					ProfileName: name,
					Entry: Entry{
						ID:         e.ID,
						Date:       d,
						Note:       e.Note,
						Amount:     e.Amount,
						CategoryID: e.CategoryID,
					},
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ProfileID < out[j].ProfileID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
