package budget

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/model"
)

// CategoryChange is the difference of one category between two records.
type CategoryChange struct {
	Category model.Category
	Current  decimal.Decimal
	Previous decimal.Decimal
	Delta    decimal.Decimal
}

// Comparison is the difference between two budget records.
type Comparison struct {
	IncomeDelta    decimal.Decimal
	AllocatedDelta decimal.Decimal
	BalanceDelta   decimal.Decimal
	Changes        []CategoryChange
}

// Compare returns current minus previous. Balance is income minus allocated.
// Only categories whose amount changed are listed, in current's order
// followed by categories only previous has.
func Compare(current, previous model.BudgetRecord, savingsID string) Comparison {
	curAlloc := current.Allocated(savingsID)
	prevAlloc := previous.Allocated(savingsID)
	cmp := Comparison{
		IncomeDelta:    current.TotalIncome.Sub(previous.TotalIncome),
		AllocatedDelta: curAlloc.Sub(prevAlloc),
		BalanceDelta:   current.TotalIncome.Sub(curAlloc).Sub(previous.TotalIncome.Sub(prevAlloc)),
	}

	seen := make(map[string]bool)
	add := func(c model.Category) {
		if seen[c.ID] {
			return
		}
		seen[c.ID] = true
		cur, prev := current.Amount(c.ID), previous.Amount(c.ID)
		if cur.Equal(prev) {
			return
		}
		cmp.Changes = append(cmp.Changes, CategoryChange{Category: c, Current: cur, Previous: prev, Delta: cur.Sub(prev)})
	}
	for _, c := range current.Categories {
		add(c.Category)
	}
	for _, c := range previous.Categories {
		add(c.Category)
	}
	return cmp
}

// Average returns a record whose income and category amounts are the means
// over records, laid out in schema order. ok is false for empty input.
func Average(records []model.BudgetRecord, schema model.CategorySchema) (model.BudgetRecord, bool) {
	if len(records) == 0 {
		return model.BudgetRecord{}, false
	}
	n := decimal.NewFromInt(int64(len(records)))
	income := decimal.Zero
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		income = income.Add(r.TotalIncome)
		for _, c := range r.Categories {
			sums[c.ID] = sums[c.ID].Add(c.Amount)
		}
	}
	avg := model.BudgetRecord{
		Name:        "Average",
		TotalIncome: income.DivRound(n, 2),
	}
	for _, c := range schema.Categories {
		avg.Categories = append(avg.Categories, model.BudgetCategory{Category: c, Amount: sums[c.ID].DivRound(n, 2)})
	}
	return avg, true
}

// GlobalSavings sums the savings amount of every record.
func GlobalSavings(records []model.BudgetRecord, savingsID string) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.Amount(savingsID))
	}
	return sum
}

// Progress summarizes spending inside a running cycle. spent covers the
// logged and planned entries up to today, committed covers the whole cycle.
func Progress(period calendar.Range, today calendar.Date, income, spent, committed decimal.Decimal) model.CycleProgress {
	p := model.CycleProgress{
		Income:    income,
		Spent:     spent,
		Committed: committed,
	}
	total := period.Days()
	elapsed := calendar.NewRange(period.From, today).Days()
	elapsed = min(max(elapsed, 0), total)
	p.DaysElapsed = elapsed
	p.DaysRemaining = total - elapsed

	if elapsed > 0 {
		p.DailyBurnRate = spent.DivRound(decimal.NewFromInt(int64(elapsed)), 2)
		p.ProjectedSpend = p.DailyBurnRate.Mul(decimal.NewFromInt(int64(total)))
	}
	if income.IsPositive() {
		p.IncomeUsedRatio = spent.Div(income).InexactFloat64()
	}
	return p
}
