package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/budget"
	"github.com/theirongolddev/paycycle/internal/model"
)

// Budgets returns the budget history, newest first.
func (s *Service) Budgets() ([]model.BudgetRecord, error) {
	return s.repo.Budgets()
}

// Budget finds a saved record by id, id prefix or exact name.
func (s *Service) Budget(ref string) (model.BudgetRecord, error) {
	recs, err := s.repo.Budgets()
	if err != nil {
		return model.BudgetRecord{}, err
	}
	ref = strings.TrimSpace(ref)
	for _, r := range recs {
		if r.ID == ref || r.Name == ref {
			return r, nil
		}
	}
	var match []model.BudgetRecord
	for _, r := range recs {
		if ref != "" && strings.HasPrefix(r.ID, ref) {
			match = append(match, r)
		}
	}
	if len(match) == 1 {
		return match[0], nil
	}
	if len(match) > 1 {
		return model.BudgetRecord{}, fmt.Errorf("%w: %q matches %d budgets", ErrBudgetNotFound, ref, len(match))
	}
	return model.BudgetRecord{}, fmt.Errorf("%w: %q", ErrBudgetNotFound, ref)
}

// SaveBudget stores a manual budget. Its savings amount is recomputed from
// the other categories and a missing id or save time is filled in.
func (s *Service) SaveBudget(rec model.BudgetRecord) (model.BudgetRecord, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return model.BudgetRecord{}, fmt.Errorf("%w: budget name is required", ErrInvalidConfig)
	}
	if rec.TotalIncome.IsNegative() {
		return model.BudgetRecord{}, fmt.Errorf("%w: income must not be negative", ErrInvalidConfig)
	}
	if rec.ID == "" || rec.ID == model.CurrentCycleBudgetID {
		rec.ID = model.NewID()
	}
	if rec.DateSaved.IsZero() {
		rec.DateSaved = s.clock.Now()
	}
	rec = budget.Rebalance(rec, s.schema.SavingsID)

	recs, err := s.repo.Budgets()
	if err != nil {
		return model.BudgetRecord{}, err
	}
	if i := slices.IndexFunc(recs, func(r model.BudgetRecord) bool { return r.ID == rec.ID }); i >= 0 {
		recs[i] = rec
	} else {
		recs = append(recs, rec)
	}
	return rec, s.repo.SaveBudgets(recs)
}

// DeleteBudget removes a saved record.
func (s *Service) DeleteBudget(ref string) (model.BudgetRecord, error) {
	target, err := s.Budget(ref)
	if err != nil {
		return model.BudgetRecord{}, err
	}
	recs, err := s.repo.Budgets()
	if err != nil {
		return model.BudgetRecord{}, err
	}
	recs = slices.DeleteFunc(recs, func(r model.BudgetRecord) bool { return r.ID == target.ID })
	return target, s.repo.SaveBudgets(recs)
}

// ForceBudget saves the live budget of a profile's running cycle to history
// before the cycle ends. It fails with ErrBudgetExists when a partial record
// for the same cycle was already saved.
func (s *Service) ForceBudget(ref string) (model.BudgetRecord, error) {
	view, err := s.CurrentCycle(ref)
	if err != nil {
		return model.BudgetRecord{}, err
	}
	rec := view.Live
	rec.ID = model.NewID()
	rec.Name = budget.PartialName(view.Profile.Name, view.Period.Start)
	rec.DateSaved = s.clock.Now()

	recs, err := s.repo.Budgets()
	if err != nil {
		return model.BudgetRecord{}, err
	}
	if slices.ContainsFunc(recs, func(r model.BudgetRecord) bool { return r.Name == rec.Name }) {
		return model.BudgetRecord{}, fmt.Errorf("%w: %q; delete or rename it first", ErrBudgetExists, rec.Name)
	}
	return rec, s.repo.AppendBudget(rec)
}

// CompareBudgets compares two saved records. With empty refs the two most
// recent records are compared.
func (s *Service) CompareBudgets(currentRef, previousRef string) (model.BudgetRecord, model.BudgetRecord, budget.Comparison, error) {
	var cur, prev model.BudgetRecord
	if currentRef == "" && previousRef == "" {
		recs, err := s.repo.Budgets()
		if err != nil {
			return cur, prev, budget.Comparison{}, err
		}
		if len(recs) < 2 {
			return cur, prev, budget.Comparison{}, fmt.Errorf("%w: need two saved budgets to compare", ErrBudgetNotFound)
		}
		cur, prev = recs[0], recs[1]
	} else {
		var err error
		if cur, err = s.Budget(currentRef); err != nil {
			return cur, prev, budget.Comparison{}, err
		}
		if prev, err = s.Budget(previousRef); err != nil {
			return cur, prev, budget.Comparison{}, err
		}
	}
	return cur, prev, budget.Compare(cur, prev, s.schema.SavingsID), nil
}

// AverageBudget returns the mean of every saved record.
func (s *Service) AverageBudget() (model.BudgetRecord, int, error) {
	recs, err := s.repo.Budgets()
	if err != nil {
		return model.BudgetRecord{}, 0, err
	}
	avg, ok := budget.Average(recs, s.schema)
	if !ok {
		return model.BudgetRecord{}, 0, fmt.Errorf("%w: no saved budgets", ErrBudgetNotFound)
	}
	return avg, len(recs), nil
}

// Savings reports the stored global savings balance and the savings summed
// over the budget history.
func (s *Service) Savings() (stored, fromHistory decimal.Decimal, err error) {
	stored, err = s.repo.GlobalSavings()
	if err != nil {
		return
	}
	recs, err := s.repo.Budgets()
	if err != nil {
		return
	}
	fromHistory = budget.GlobalSavings(recs, s.schema.SavingsID)
	return
}

// SetSavings replaces the stored global savings balance.
func (s *Service) SetSavings(amount string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidConfig, amount)
	}
	return v, s.repo.SetGlobalSavings(v)
}

// GoalInput is a savings goal to plan. An empty Current starts from the
// stored global savings balance; an empty Frequency uses the active
// profile's pay cycle.
type GoalInput struct {
	Target       string
	Contribution string
	Frequency    string
	Current      string
}

// SavingsGoal plans how many contributions reach a savings target and when.
func (s *Service) SavingsGoal(in GoalInput) (budget.GoalPlan, decimal.Decimal, model.CycleFrequency, error) {
	var current decimal.Decimal
	target, err := decimal.NewFromString(strings.TrimSpace(in.Target))
	if err != nil {
		return budget.GoalPlan{}, current, "", fmt.Errorf("%w: target %q is not a number", ErrInvalidConfig, in.Target)
	}
	contribution, err := decimal.NewFromString(strings.TrimSpace(in.Contribution))
	if err != nil {
		return budget.GoalPlan{}, current, "", fmt.Errorf("%w: contribution %q is not a number", ErrInvalidConfig, in.Contribution)
	}
	if strings.TrimSpace(in.Current) == "" {
		if current, err = s.repo.GlobalSavings(); err != nil {
			return budget.GoalPlan{}, current, "", err
		}
	} else if current, err = decimal.NewFromString(strings.TrimSpace(in.Current)); err != nil {
		return budget.GoalPlan{}, current, "", fmt.Errorf("%w: current %q is not a number", ErrInvalidConfig, in.Current)
	}

	var freq model.CycleFrequency
	if strings.TrimSpace(in.Frequency) == "" {
		p, err := s.ActiveProfile()
		if err != nil {
			return budget.GoalPlan{}, current, "", err
		}
		if !p.Configured() {
			return budget.GoalPlan{}, current, "", fmt.Errorf("%w: pass a frequency", ErrProfileNotConfigured)
		}
		freq = p.Config.Frequency
	} else if freq, err = model.ParseCycleFrequency(in.Frequency); err != nil {
		return budget.GoalPlan{}, current, "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	plan, err := budget.TimeToGoal(target, current, contribution, freq.Recurrence(), s.Today())
	if err != nil {
		return budget.GoalPlan{}, current, freq, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return plan, current, freq, nil
}
