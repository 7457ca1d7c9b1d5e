// Package budget builds budget snapshots from per-category totals.
package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/model"
)

// Build returns a budget record with one category per schema entry, in
// schema order. Each category takes its amount from totals (zero when
// absent); the savings category takes whatever income is left, floored at
// zero. Build leaves ID, Name and CycleTag for the caller.
func Build(schema model.CategorySchema, totals map[string]decimal.Decimal, income decimal.Decimal, freq model.CycleFrequency, savedAt time.Time) model.BudgetRecord {
	cats := make([]model.BudgetCategory, 0, len(schema.Categories))
	spent := decimal.Zero
	savingsIdx := -1
	for _, c := range schema.Categories {
		if c.ID == schema.SavingsID {
			savingsIdx = len(cats)
			cats = append(cats, model.BudgetCategory{Category: c})
			continue
		}
		amt := totals[c.ID]
		spent = spent.Add(amt)
		cats = append(cats, model.BudgetCategory{Category: c, Amount: amt})
	}
	if savingsIdx >= 0 {
		cats[savingsIdx].Amount = Savings(income, spent)
	}
	return model.BudgetRecord{
		TotalIncome: income,
		Categories:  cats,
		DateSaved:   savedAt,
		Frequency:   freq,
	}
}

// Savings returns income minus spent, or zero when spending exceeds income.
func Savings(income, spent decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, income.Sub(spent))
}

// Rebalance recomputes the savings amount of an edited record from its
// other categories.
func Rebalance(rec model.BudgetRecord, savingsID string) model.BudgetRecord {
	out := rec
	out.Categories = make([]model.BudgetCategory, len(rec.Categories))
	copy(out.Categories, rec.Categories)
	spent := rec.Allocated(savingsID)
	for i := range out.Categories {
		if out.Categories[i].ID == savingsID {
			out.Categories[i].Amount = Savings(rec.TotalIncome, spent)
		}
	}
	return out
}

// Deficit returns how much spending exceeds income, or zero. The snapshot
// itself never records it.
func Deficit(rec model.BudgetRecord, savingsID string) decimal.Decimal {
	return decimal.Max(decimal.Zero, rec.Allocated(savingsID).Sub(rec.TotalIncome))
}
