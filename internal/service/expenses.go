package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/ledger"
	"github.com/theirongolddev/paycycle/internal/model"
)

// ExpenseInput is a user-supplied expense.
type ExpenseInput struct {
	Note     string
	Amount   string
	Category string
}

func (s *Service) parseExpense(in ExpenseInput) (string, decimal.Decimal, string, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil {
		return "", decimal.Zero, "", fmt.Errorf("%w: amount %q is not a number", ErrInvalidExpense, in.Amount)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return "", decimal.Zero, "", fmt.Errorf("%w: amount must be at least 0.01", ErrInvalidExpense)
	}
	cat, err := resolveCategory(s.schema, in.Category)
	if err != nil {
		return "", decimal.Zero, "", err
	}
	return strings.TrimSpace(in.Note), amount, cat, nil
}

// AddExpense logs an expense on day for the profile referenced by ref.
func (s *Service) AddExpense(ref string, day calendar.Date, in ExpenseInput) (model.DailyExpense, error) {
	p, err := s.ResolveProfile(ref)
	if err != nil {
		return model.DailyExpense{}, err
	}
	if day.IsZero() {
		return model.DailyExpense{}, fmt.Errorf("%w: date is required", ErrInvalidExpense)
	}
	note, amount, cat, err := s.parseExpense(in)
	if err != nil {
		return model.DailyExpense{}, err
	}

	all, err := s.repo.AllDaily()
	if err != nil {
		return model.DailyExpense{}, err
	}
	l := all[p.ID]
	if l == nil {
		l = model.DailyLedger{}
	}
	exp := model.DailyExpense{ID: model.NewID(), Note: note, Amount: amount, CategoryID: cat}
	l[day.Key()] = append(l[day.Key()], exp)
	all[p.ID] = l
	return exp, s.repo.SaveAllDaily(all)
}

// Expenses returns the logged and planned entries of a profile in window.
func (s *Service) Expenses(ref string, window calendar.Range) (ledger.Result, error) {
	p, err := s.ResolveProfile(ref)
	if err != nil {
		return ledger.Result{}, err
	}
	daily, err := s.repo.Daily(p.ID)
	if err != nil {
		return ledger.Result{}, err
	}
	rules, err := s.repo.Future(p.ID)
	if err != nil {
		return ledger.Result{}, err
	}
	return ledger.Aggregate(daily, rules, window)
}

// DeleteExpense removes a logged expense by id or unique id prefix. Days
// left without expenses are dropped from the ledger.
func (s *Service) DeleteExpense(ref, id string) (model.DailyExpense, error) {
	p, err := s.ResolveProfile(ref)
	if err != nil {
		return model.DailyExpense{}, err
	}
	all, err := s.repo.AllDaily()
	if err != nil {
		return model.DailyExpense{}, err
	}
	var ids []string
	for _, exps := range all[p.ID] {
		for _, e := range exps {
			ids = append(ids, e.ID)
		}
	}
	full, err := matchID(ids, id)
	if err != nil {
		return model.DailyExpense{}, err
	}
	for key, exps := range all[p.ID] {
		i := slices.IndexFunc(exps, func(e model.DailyExpense) bool { return e.ID == full })
		if i < 0 {
			continue
		}
		removed := exps[i]
		exps = slices.Delete(exps, i, i+1)
		if len(exps) == 0 {
			delete(all[p.ID], key)
		} else {
			all[p.ID][key] = exps
		}
		return removed, s.repo.SaveAllDaily(all)
	}
	return model.DailyExpense{}, fmt.Errorf("%w: %q", ErrExpenseNotFound, id)
}

// matchID resolves ref to one of ids, exactly or by unique prefix.
func matchID(ids []string, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty id", ErrExpenseNotFound)
	}
	var match []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			match = append(match, id)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return "", fmt.Errorf("%w: %q", ErrExpenseNotFound, ref)
	default:
		return "", fmt.Errorf("%w: %q matches %d expenses", ErrExpenseNotFound, ref, len(match))
	}
}

// PlannedInput is a user-supplied planned expense rule.
type PlannedInput struct {
	ExpenseInput
	StartDate string
	Frequency string
	EndDate   string
}

// AddPlanned stores a planned expense rule.
func (s *Service) AddPlanned(ref string, in PlannedInput) (model.FutureExpense, error) {
	p, err := s.ResolveProfile(ref)
	if err != nil {
		return model.FutureExpense{}, err
	}
	note, amount, cat, err := s.parseExpense(in.ExpenseInput)
	if err != nil {
		return model.FutureExpense{}, err
	}
	freq, err := model.ParseExpenseFrequency(in.Frequency)
	if err != nil {
		return model.FutureExpense{}, fmt.Errorf("%w: %v", ErrInvalidExpense, err)
	}
	start, err := calendar.Parse(in.StartDate)
	if err != nil {
		return model.FutureExpense{}, fmt.Errorf("%w: start date: %v", ErrInvalidExpense, err)
	}
	fe := model.FutureExpense{
		ID:         model.NewID(),
		Note:       note,
		Amount:     amount,
		CategoryID: cat,
		StartDate:  start,
		Frequency:  freq,
	}
	if strings.TrimSpace(in.EndDate) != "" && freq != model.ExpenseOnce {
		end, err := calendar.Parse(in.EndDate)
		if err != nil {
			return model.FutureExpense{}, fmt.Errorf("%w: end date: %v", ErrInvalidExpense, err)
		}
		if end.Before(start) {
			return model.FutureExpense{}, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidExpense, end, start)
		}
		fe.EndDate = &end
	}

	all, err := s.repo.AllFuture()
	if err != nil {
		return model.FutureExpense{}, err
	}
	all[p.ID] = append(all[p.ID], fe)
	return fe, s.repo.SaveAllFuture(all)
}

// Planned returns the planned expense rules of a profile.
func (s *Service) Planned(ref string) ([]model.FutureExpense, error) {
	p, err := s.ResolveProfile(ref)
	if err != nil {
		return nil, err
	}
	return s.repo.Future(p.ID)
}

// DeletePlanned removes a planned expense rule by id or unique id prefix.
func (s *Service) DeletePlanned(ref, id string) (model.FutureExpense, error) {
	p, err := s.ResolveProfile(ref)
	if err != nil {
		return model.FutureExpense{}, err
	}
	all, err := s.repo.AllFuture()
	if err != nil {
		return model.FutureExpense{}, err
	}
	rules := all[p.ID]
	ids := make([]string, len(rules))
	for i, fe := range rules {
		ids[i] = fe.ID
	}
	full, err := matchID(ids, id)
	if err != nil {
		return model.FutureExpense{}, fmt.Errorf("planned expense: %w", err)
	}
	i := slices.IndexFunc(rules, func(fe model.FutureExpense) bool { return fe.ID == full })
	removed := rules[i]
	all[p.ID] = slices.Delete(rules, i, i+1)
	return removed, s.repo.SaveAllFuture(all)
}

// Upcoming returns planned occurrences of every profile in the next days.
func (s *Service) Upcoming(days int) ([]ledger.UpcomingEntry, error) {
	all, err := s.repo.AllFuture()
	if err != nil {
		return nil, err
	}
	return ledger.Upcoming(all, s.Today(), days)
}

// NextPlanned returns the next planned occurrence of a profile within a year.
func (s *Service) NextPlanned(ref string) (ledger.Entry, bool, error) {
	rules, err := s.Planned(ref)
	if err != nil {
		return ledger.Entry{}, false, err
	}
	return ledger.NextPlanned(rules, s.Today(), 366)
}

// Recent returns the n most recent logged expenses across every profile.
func (s *Service) Recent(n int) ([]ledger.RecentEntry, error) {
	all, err := s.repo.AllDaily()
	if err != nil {
		return nil, err
	}
	profiles, err := s.repo.Profiles()
	if err != nil {
		return nil, err
	}
	return ledger.Recent(all, profiles, n), nil
}
