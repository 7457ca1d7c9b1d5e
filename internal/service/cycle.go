package service

import (
	"fmt"

	"github.com/theirongolddev/paycycle/internal/budget"
	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/cycle"
	"github.com/theirongolddev/paycycle/internal/ledger"
	"github.com/theirongolddev/paycycle/internal/model"
)

// CycleView is everything shown about a profile's running cycle.
type CycleView struct {
	Profile model.CycleProfile
	Today   calendar.Date
	Period  cycle.Period
	// Cycle covers the whole period, ToDate only its start through today.
	Cycle     ledger.Result
	ToDate    ledger.Result
	Live      model.BudgetRecord
	Breakdown []ledger.CategoryAmount
	Progress  model.CycleProgress
}

// CurrentCycle derives the running cycle of a profile. It returns
// ErrProfileNotConfigured for a profile without a pay cycle and ErrNoCycle
// when the cycle starts in the future.
func (s *Service) CurrentCycle(ref string) (CycleView, error) {
	p, err := s.ResolveProfile(ref)
	if err != nil {
		return CycleView{}, err
	}
	if !p.Configured() {
		return CycleView{}, fmt.Errorf("%w: %s", ErrProfileNotConfigured, p.Name)
	}
	today := s.Today()
	period, ok, err := cycle.Locate(p.Config.StartDate, p.Config.Frequency.Recurrence(), today)
	if err != nil {
		return CycleView{}, err
	}
	if !ok {
		return CycleView{}, fmt.Errorf("%w: %s starts on %s", ErrNoCycle, p.Name, p.Config.StartDate)
	}

	daily, err := s.repo.Daily(p.ID)
	if err != nil {
		return CycleView{}, err
	}
	rules, err := s.repo.Future(p.ID)
	if err != nil {
		return CycleView{}, err
	}
	whole, err := ledger.Aggregate(daily, rules, period.Range())
	if err != nil {
		return CycleView{}, err
	}
	toDate, err := ledger.Aggregate(daily, rules, calendar.NewRange(period.Start, today))
	if err != nil {
		return CycleView{}, err
	}

	live := budget.Build(s.schema, whole.Totals, p.Config.Income, p.Config.Frequency, period.Start.Time(s.loc))
	live.ID = model.CurrentCycleBudgetID
	live.Name = budget.LiveName(p.Name, period.Start)

	return CycleView{
		Profile:   p,
		Today:     today,
		Period:    period,
		Cycle:     whole,
		ToDate:    toDate,
		Live:      live,
		Breakdown: ledger.Breakdown(s.schema, toDate.Totals),
		Progress:  budget.Progress(period.Range(), today, p.Config.Income, toDate.Total(), whole.Total()),
	}, nil
}
