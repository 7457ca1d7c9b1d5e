package model

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/recurrence"
)

// DailyExpense is a concrete expense logged on a day.
type DailyExpense struct {
	ID         string          `json:"id"`
	Note       string          `json:"note"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"categoryId"`
}

// DailyLedger maps a date key to the expenses logged that day.
type DailyLedger map[string][]DailyExpense

// AllDaily maps a profile id to its daily ledger.
type AllDaily map[string]DailyLedger

// FutureExpense is a planned expense rule. Its occurrences are derived on
// demand and never stored.
type FutureExpense struct {
	ID         string           `json:"id"`
	Note       string           `json:"note"`
	Amount     decimal.Decimal  `json:"amount"`
	CategoryID string           `json:"categoryId"`
	StartDate  calendar.Date    `json:"startDate"`
	Frequency  ExpenseFrequency `json:"frequency"`
	EndDate    *calendar.Date   `json:"endDate,omitempty"`
}

// Rule returns the recurrence rule of the planned expense. A zero end date
// (written as "" by older data) means the rule is open-ended.
func (f FutureExpense) Rule() recurrence.Rule {
	rule := recurrence.Rule{
		Start:     f.StartDate,
		Frequency: f.Frequency.Recurrence(),
	}
	if f.EndDate != nil && !f.EndDate.IsZero() {
		rule.End = f.EndDate
	}
	return rule
}

// AllFuture maps a profile id to its planned expense rules.
type AllFuture map[string][]FutureExpense
