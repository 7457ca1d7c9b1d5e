package ledger

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/model"
)

func mustDate(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.Parse(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAggregate_WeeklyScenario(t *testing.T) {
	daily := model.DailyLedger{
		"2024-01-03": {{ID: "d1", Note: "Groceries", Amount: dec(50), CategoryID: "food"}},
		"2024-01-09": {{ID: "d2", Note: "Next week", Amount: dec(99), CategoryID: "food"}},
	}
	rules := []model.FutureExpense{{
		ID: "r1", Note: "Bus pass", Amount: dec(10), CategoryID: "transport",
		StartDate: mustDate(t, "2024-01-01"), Frequency: model.ExpenseWeekly,
	}}
	window := calendar.NewRange(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-07"))

	res, err := Aggregate(daily, rules, window)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !res.Total().Equal(dec(60)) {
		t.Fatalf("Total = %s, want 60", res.Total())
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Entries))
	}

	planned := res.Entries[0]
	if !planned.Planned || planned.ID != "r1-2024-01-01" || planned.Note != "(Planned) Bus pass" {
		t.Fatalf("planned entry = %+v", planned)
	}
	if res.Entries[1].ID != "d1" {
		t.Fatalf("second entry = %+v, want d1", res.Entries[1])
	}
	if !res.Totals["food"].Equal(dec(50)) || !res.Totals["transport"].Equal(dec(10)) {
		t.Fatalf("totals = %v", res.Totals)
	}
	if _, ok := res.Totals["housing"]; ok {
		t.Fatal("category without entries present in totals")
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	daily := model.DailyLedger{
		"2024-02-01": {{ID: "a", Amount: dec(5), CategoryID: "food"}, {ID: "b", Amount: dec(7), CategoryID: "wants"}},
		"2024-02-10": {{ID: "c", Amount: dec(3), CategoryID: "food"}},
	}
	rules := []model.FutureExpense{
		{ID: "m", Amount: dec(100), CategoryID: "housing", StartDate: mustDate(t, "2024-01-05"), Frequency: model.ExpenseMonthly},
		{ID: "w", Amount: dec(4), CategoryID: "transport", StartDate: mustDate(t, "2024-02-02"), Frequency: model.ExpenseWeekly},
	}
	window := calendar.NewRange(mustDate(t, "2024-02-01"), mustDate(t, "2024-02-29"))

	first, err := Aggregate(daily, rules, window)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	second, err := Aggregate(daily, rules, window)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated Aggregate calls differ")
	}
	if len(daily["2024-02-01"]) != 2 {
		t.Fatal("Aggregate modified its input")
	}
	// 5+7+3 logged, 100 rent, 4 weekly x4 (2, 9, 16, 23)
	if !first.Total().Equal(dec(131)) {
		t.Fatalf("Total = %s, want 131", first.Total())
	}
}

func TestAggregate_SkipsMalformedKeysAndToleratesUnknownCategory(t *testing.T) {
	daily := model.DailyLedger{
		"2024-1-5":   {{ID: "bad", Amount: dec(1000), CategoryID: "food"}},
		"not-a-date": {{ID: "bad2", Amount: dec(1000), CategoryID: "food"}},
		"2024-01-05": {{ID: "ok", Amount: dec(8), CategoryID: "mystery"}},
	}
	window := calendar.NewRange(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	res, err := Aggregate(daily, nil, window)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].ID != "ok" {
		t.Fatalf("entries = %+v", res.Entries)
	}
	if got := Breakdown(model.DefaultSchema(), res.Totals); len(got) != 0 {
		t.Fatalf("unknown category leaked into breakdown: %+v", got)
	}
}

func TestAggregate_OnceRule(t *testing.T) {
	rules := []model.FutureExpense{{
		ID: "o", Amount: dec(30), CategoryID: "wants",
		StartDate: mustDate(t, "2024-03-10"), Frequency: model.ExpenseOnce,
	}}

	in, err := Aggregate(nil, rules, calendar.NewRange(mustDate(t, "2024-03-01"), mustDate(t, "2024-03-31")))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(in.Entries) != 1 {
		t.Fatalf("entries inside range = %d, want 1", len(in.Entries))
	}

	out, err := Aggregate(nil, rules, calendar.NewRange(mustDate(t, "2024-04-01"), mustDate(t, "2024-04-30")))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !out.Empty() {
		t.Fatalf("entries outside range = %d, want 0", len(out.Entries))
	}
}

func TestBreakdown_SortedByAmount(t *testing.T) {
	totals := map[string]decimal.Decimal{
		"food":      dec(20),
		"housing":   dec(60),
		"transport": dec(20),
		"wants":     dec(0),
	}
	got := Breakdown(model.DefaultSchema(), totals)
	if len(got) != 3 {
		t.Fatalf("breakdown = %+v, want 3 entries", got)
	}
	order := []string{got[0].Category.ID, got[1].Category.ID, got[2].Category.ID}
	want := []string{"housing", "transport", "food"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if got[0].Share != 0.6 {
		t.Fatalf("housing share = %v, want 0.6", got[0].Share)
	}
}

func TestUpcoming(t *testing.T) {
	all := model.AllFuture{
		"p2": {{ID: "rent", Amount: dec(500), CategoryID: "housing", StartDate: mustDate(t, "2024-01-03"), Frequency: model.ExpenseMonthly}},
		"p1": {
			{ID: "gym", Amount: dec(30), CategoryID: "needs", StartDate: mustDate(t, "2024-01-03"), Frequency: model.ExpenseMonthly},
			{ID: "trip", Amount: dec(300), CategoryID: "wants", StartDate: mustDate(t, "2024-03-01"), Frequency: model.ExpenseOnce},
		},
	}
	got, err := Upcoming(all, mustDate(t, "2024-02-01"), 3)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("upcoming = %+v, want 2", got)
	}
	if got[0].ProfileID != "p1" || got[1].ProfileID != "p2" {
		t.Fatalf("profile order = %s, %s", got[0].ProfileID, got[1].ProfileID)
	}
	if got[0].Date.Key() != "2024-02-03" {
		t.Fatalf("date = %s, want 2024-02-03", got[0].Date)
	}
}

func TestNextPlanned(t *testing.T) {
	rules := []model.FutureExpense{
		{ID: "late", Amount: dec(1), StartDate: mustDate(t, "2024-01-20"), Frequency: model.ExpenseMonthly},
		{ID: "soon", Amount: dec(2), StartDate: mustDate(t, "2024-01-02"), Frequency: model.ExpenseWeekly},
	}
	e, ok, err := NextPlanned(rules, mustDate(t, "2024-01-10"), 60)
	if err != nil || !ok {
		t.Fatalf("NextPlanned: ok=%v err=%v", ok, err)
	}
	if e.RuleID != "soon" || e.Date.Key() != "2024-01-16" {
		t.Fatalf("next = %s on %s, want soon on 2024-01-16", e.RuleID, e.Date)
	}

	if _, ok, _ := NextPlanned(nil, mustDate(t, "2024-01-10"), 60); ok {
		t.Fatal("NextPlanned found an entry with no rules")
	}
}

func TestRecent(t *testing.T) {
	all := model.AllDaily{
		"p1": {
			"2024-01-03": {{ID: "a", Amount: dec(1), CategoryID: "food"}, {ID: "b", Amount: dec(2), CategoryID: "food"}},
			"2024-01-05": {{ID: "c", Amount: dec(3), CategoryID: "wants"}},
			"bad-key":    {{ID: "x", Amount: dec(9), CategoryID: "food"}},
		},
		"p2": {
			"2024-01-05": {{ID: "d", Amount: dec(4), CategoryID: "food"}},
			"2024-01-01": {{ID: "e", Amount: dec(5), CategoryID: "food"}},
		},
		"gone": {
			"2024-01-04": {{ID: "f", Amount: dec(6), CategoryID: "food"}},
		},
	}
	profiles := []model.CycleProfile{{ID: "p1", Name: "Main"}, {ID: "p2", Name: "Side"}}

	got := Recent(all, profiles, 5)
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	want := []string{"c", "d", "f", "b", "a"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("order = %v, want %v", ids, want)
	}
	if got[0].ProfileName != "Main" || got[1].ProfileName != "Side" || got[2].ProfileName != "gone" {
		t.Fatalf("profile names = %q, %q, %q", got[0].ProfileName, got[1].ProfileName, got[2].ProfileName)
	}
	if got[0].Planned {
		t.Fatal("logged expense marked as planned")
	}

	if Recent(all, profiles, 0) != nil {
		t.Fatal("Recent(0) returned entries")
	}
	if n := len(Recent(all, profiles, 50)); n != 6 {
		t.Fatalf("Recent(50) = %d entries, want 6", n)
	}
}
