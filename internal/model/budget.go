package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentCycleBudgetID is the id of the live, unsaved budget for the current
// cycle. Records with this id are never written to history.
const CurrentCycleBudgetID = "current-cycle"

// BudgetCategory is a category with its resolved amount.
type BudgetCategory struct {
	Category
	Amount decimal.Decimal `json:"amount"`
}

// BudgetRecord is a budget snapshot. CycleTag identifies the pay cycle an
// automatic record was created for ("<profileID>@<cycleStart>") and is empty
// for manual records.
type BudgetRecord struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	TotalIncome decimal.Decimal  `json:"totalIncome"`
	Categories  []BudgetCategory `json:"categories"`
	DateSaved   time.Time        `json:"dateSaved"`
	Frequency   CycleFrequency   `json:"frequency"`
	CycleTag    string           `json:"cycleTag,omitempty"`
}

// Amount returns the amount of the category with the given id, or zero.
func (r BudgetRecord) Amount(id string) decimal.Decimal {
	for _, c := range r.Categories {
		if c.ID == id {
			return c.Amount
		}
	}
	return decimal.Zero
}

// Allocated returns the sum of every category except savingsID.
func (r BudgetRecord) Allocated(savingsID string) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range r.Categories {
		if c.ID != savingsID {
			sum = sum.Add(c.Amount)
		}
	}
	return sum
}

// CycleProgress tracks spending inside the running cycle.
type CycleProgress struct {
	Income          decimal.Decimal
	Spent           decimal.Decimal // period to date
	Committed       decimal.Decimal // whole cycle, planned included
	DailyBurnRate   decimal.Decimal
	ProjectedSpend  decimal.Decimal
	DaysElapsed     int
	DaysRemaining   int
	IncomeUsedRatio float64
}
