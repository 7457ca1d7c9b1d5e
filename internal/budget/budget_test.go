package budget

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/recurrence"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestBuild_SavingsIsLeftover(t *testing.T) {
	schema := model.DefaultSchema()
	totals := map[string]decimal.Decimal{"food": dec(50), "transport": dec(10), "unknown": dec(999)}
	saved := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	rec := Build(schema, totals, dec(500), model.CycleWeekly, saved)

	if len(rec.Categories) != len(schema.Categories) {
		t.Fatalf("categories = %d, want %d", len(rec.Categories), len(schema.Categories))
	}
	for i, c := range rec.Categories {
		if c.ID != schema.Categories[i].ID {
			t.Fatalf("category %d = %s, want %s", i, c.ID, schema.Categories[i].ID)
		}
	}
	if !rec.Amount("savings").Equal(dec(440)) {
		t.Fatalf("savings = %s, want 440", rec.Amount("savings"))
	}
	if !rec.Amount("housing").IsZero() {
		t.Fatalf("housing = %s, want 0", rec.Amount("housing"))
	}
	if !rec.DateSaved.Equal(saved) || rec.Frequency != model.CycleWeekly {
		t.Fatalf("metadata = %v %s", rec.DateSaved, rec.Frequency)
	}
}

func TestBuild_SavingsFloor(t *testing.T) {
	schema := model.DefaultSchema()
	cases := []struct {
		income, spent, want int64
	}{
		{1000, 0, 1000},
		{1000, 400, 600},
		{1000, 1000, 0},
		{1000, 1500, 0},
		{0, 20, 0},
	}
	for _, tc := range cases {
		rec := Build(schema, map[string]decimal.Decimal{"wants": dec(tc.spent)}, dec(tc.income), model.CycleMonthly, time.Time{})
		got := rec.Amount("savings")
		if !got.Equal(dec(tc.want)) {
			t.Fatalf("income %d spent %d: savings = %s, want %d", tc.income, tc.spent, got, tc.want)
		}
		if got.IsNegative() {
			t.Fatalf("negative savings %s", got)
		}
	}
}

func TestRebalanceAndDeficit(t *testing.T) {
	rec := Build(model.DefaultSchema(), map[string]decimal.Decimal{"food": dec(100)}, dec(300), model.CycleMonthly, time.Time{})
	rec.Categories[0].Amount = dec(250) // housing

	out := Rebalance(rec, "savings")
	if !out.Amount("savings").IsZero() {
		t.Fatalf("savings = %s, want 0", out.Amount("savings"))
	}
	if !rec.Amount("savings").Equal(dec(200)) {
		t.Fatal("Rebalance modified its input")
	}
	if !Deficit(out, "savings").Equal(dec(50)) {
		t.Fatalf("deficit = %s, want 50", Deficit(out, "savings"))
	}
}

func TestCompare(t *testing.T) {
	schema := model.DefaultSchema()
	prev := Build(schema, map[string]decimal.Decimal{"food": dec(100), "wants": dec(50)}, dec(1000), model.CycleMonthly, time.Time{})
	cur := Build(schema, map[string]decimal.Decimal{"food": dec(120), "wants": dec(50)}, dec(1100), model.CycleMonthly, time.Time{})

	cmp := Compare(cur, prev, "savings")
	if !cmp.IncomeDelta.Equal(dec(100)) {
		t.Fatalf("IncomeDelta = %s, want 100", cmp.IncomeDelta)
	}
	if !cmp.AllocatedDelta.Equal(dec(20)) {
		t.Fatalf("AllocatedDelta = %s, want 20", cmp.AllocatedDelta)
	}
	if !cmp.BalanceDelta.Equal(dec(80)) {
		t.Fatalf("BalanceDelta = %s, want 80", cmp.BalanceDelta)
	}
	// food changed, savings changed (850 -> 930); wants did not.
	if len(cmp.Changes) != 2 {
		t.Fatalf("changes = %+v, want 2", cmp.Changes)
	}
	if cmp.Changes[0].Category.ID != "food" || !cmp.Changes[0].Delta.Equal(dec(20)) {
		t.Fatalf("first change = %+v", cmp.Changes[0])
	}
}

func TestAverageAndGlobalSavings(t *testing.T) {
	schema := model.DefaultSchema()
	records := []model.BudgetRecord{
		Build(schema, map[string]decimal.Decimal{"food": dec(100)}, dec(1000), model.CycleMonthly, time.Time{}),
		Build(schema, map[string]decimal.Decimal{"food": dec(201)}, dec(1000), model.CycleMonthly, time.Time{}),
	}

	avg, ok := Average(records, schema)
	if !ok {
		t.Fatal("Average returned !ok")
	}
	if !avg.Amount("food").Equal(decimal.RequireFromString("150.5")) {
		t.Fatalf("avg food = %s, want 150.5", avg.Amount("food"))
	}
	if !avg.TotalIncome.Equal(dec(1000)) {
		t.Fatalf("avg income = %s, want 1000", avg.TotalIncome)
	}
	if _, ok := Average(nil, schema); ok {
		t.Fatal("Average of nothing returned ok")
	}

	if got := GlobalSavings(records, "savings"); !got.Equal(dec(1699)) {
		t.Fatalf("GlobalSavings = %s, want 1699", got)
	}
}

func TestProgress(t *testing.T) {
	period := calendar.NewRange(calendar.MustParse("2024-01-01"), calendar.MustParse("2024-01-10"))
	p := Progress(period, calendar.MustParse("2024-01-04"), dec(1000), dec(200), dec(450))

	if p.DaysElapsed != 4 || p.DaysRemaining != 6 {
		t.Fatalf("days = %d elapsed / %d remaining, want 4/6", p.DaysElapsed, p.DaysRemaining)
	}
	if !p.DailyBurnRate.Equal(dec(50)) {
		t.Fatalf("burn rate = %s, want 50", p.DailyBurnRate)
	}
	if !p.ProjectedSpend.Equal(dec(500)) {
		t.Fatalf("projected = %s, want 500", p.ProjectedSpend)
	}
	if p.IncomeUsedRatio != 0.2 {
		t.Fatalf("ratio = %v, want 0.2", p.IncomeUsedRatio)
	}
}

func TestTimeToGoal(t *testing.T) {
	today := calendar.MustParse("2024-01-31")

	plan, err := TimeToGoal(dec(10000), dec(1000), dec(200), recurrence.Monthly, today)
	if err != nil {
		t.Fatalf("TimeToGoal: %v", err)
	}
	if plan.Reached || plan.Contributions != 45 || !plan.Remaining.Equal(dec(9000)) {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Date.Key() != "2027-10-31" {
		t.Fatalf("Date = %s, want 2027-10-31", plan.Date)
	}

	plan, err = TimeToGoal(dec(100), dec(0), dec(7), recurrence.Weekly, today)
	if err != nil {
		t.Fatalf("TimeToGoal weekly: %v", err)
	}
	if plan.Contributions != 15 || plan.Date.Key() != "2024-05-15" {
		t.Fatalf("weekly plan = %d on %s, want 15 on 2024-05-15", plan.Contributions, plan.Date)
	}

	if plan, err := TimeToGoal(dec(100), dec(100), dec(0), recurrence.Monthly, today); err != nil || !plan.Reached {
		t.Fatalf("reached goal: %+v, %v", plan, err)
	}
	if _, err := TimeToGoal(dec(100), dec(0), dec(0), recurrence.Monthly, today); !errors.Is(err, ErrNoContribution) {
		t.Fatalf("zero contribution: err = %v", err)
	}
	if _, err := TimeToGoal(dec(100), dec(0), dec(5), recurrence.Once, today); !errors.Is(err, recurrence.ErrUnknownFrequency) {
		t.Fatalf("once: err = %v", err)
	}
	if _, err := TimeToGoal(dec(1_000_000), dec(0), decimal.RequireFromString("0.01"), recurrence.Weekly, today); !errors.Is(err, ErrGoalTooFar) {
		t.Fatalf("tiny contribution: err = %v", err)
	}
}
