// Package trigger appends a budget record to history when a pay cycle ends.
//
// Run is meant to be called freely (on every CLI invocation and on every
// daemon tick). It evaluates at most once per calendar day and never writes
// two records for the same cycle.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/theirongolddev/paycycle/internal/budget"
	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/cycle"
	"github.com/theirongolddev/paycycle/internal/ledger"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/repository"
	"github.com/theirongolddev/paycycle/internal/store"
)

// State is the position of a profile in the cycle-end state machine.
type State string

const (
	// Waiting means no completed cycle needs a record.
	Waiting State = "WAITING"
	// Due means a completed cycle has no record yet.
	Due State = "DUE"
	// Committed means the last completed cycle has its record.
	Committed State = "COMMITTED"
)

// Journal records trigger runs.
type Journal interface {
	RecordRun(r store.TriggerRun) error
}

// Outcome is what happened to one profile during a run.
type Outcome struct {
	ProfileID   string
	ProfileName string
	State       State
	Period      cycle.Period
	HasPeriod   bool
	Created     *model.BudgetRecord
	Err         error
}

// Report summarizes a run.
type Report struct {
	Day      calendar.Date
	Skipped  bool
	Outcomes []Outcome
}

// Created returns the records written during the run.
func (r Report) Created() []model.BudgetRecord {
	var out []model.BudgetRecord
	for _, o := range r.Outcomes {
		if o.Created != nil {
			out = append(out, *o.Created)
		}
	}
	return out
}

// Failed returns the outcomes that ended in an error.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Trigger evaluates every configured profile against its last completed
// cycle.
type Trigger struct {
	repo    *repository.Repository
	schema  model.CategorySchema
	clock   calendar.Clock
	loc     *time.Location
	log     *log.Logger
	journal Journal
}

// Options configures a Trigger. Zero fields take defaults.
type Options struct {
	Schema   model.CategorySchema
	Clock    calendar.Clock
	Location *time.Location
	Logger   *log.Logger
	Journal  Journal
}

// New returns a trigger over repo.
func New(repo *repository.Repository, opts Options) *Trigger {
	t := &Trigger{
		repo:    repo,
		schema:  opts.Schema,
		clock:   opts.Clock,
		loc:     opts.Location,
		log:     opts.Logger,
		journal: opts.Journal,
	}
	if len(t.schema.Categories) == 0 {
		t.schema = model.DefaultSchema()
	}
	if t.clock == nil {
		t.clock = calendar.SystemClock{}
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.log == nil {
		t.log = log.New(io.Discard, "", 0)
	}
	return t
}

// Run evaluates every configured profile unless a run already happened
// today. The last-check marker is set to today whatever the outcome, so a
// failing profile is retried tomorrow rather than on every call. Per-profile
// failures are logged and reported in the Outcome; the returned error covers
// only failures to read or write shared state.
func (t *Trigger) Run(ctx context.Context) (Report, error) {
	today := calendar.Today(t.clock, t.loc)
	rep := Report{Day: today}

	last, ok, err := t.repo.LastCycleCheck()
	if err != nil {
		return rep, err
	}
	if ok && last.Equal(today) {
		rep.Skipped = true
		t.record(rep)
		return rep, nil
	}

	rep.Outcomes, err = t.evaluate(ctx, today, true)
	if markErr := t.repo.SetLastCycleCheck(today); markErr != nil {
		err = errors.Join(err, fmt.Errorf("setting last check: %w", markErr))
	}
	t.record(rep)
	return rep, err
}

// Status reports each configured profile's state on today without writing
// anything.
func (t *Trigger) Status(ctx context.Context) ([]Outcome, error) {
	return t.evaluate(ctx, calendar.Today(t.clock, t.loc), false)
}

func (t *Trigger) evaluate(ctx context.Context, today calendar.Date, commit bool) ([]Outcome, error) {
	profiles, err := t.repo.Profiles()
	if err != nil {
		return nil, err
	}
	history, err := t.repo.Budgets()
	if err != nil {
		return nil, err
	}

	var outcomes []Outcome
	for _, p := range profiles {
		if !p.Configured() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		o := t.evaluateProfile(p, today, history, commit)
		if o.Err != nil {
			t.log.Printf("cycle-end check for profile %q failed: %v", p.Name, o.Err)
		}
		if o.Created != nil {
			history = append(history, *o.Created)
			t.log.Printf("created budget %q", o.Created.Name)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func (t *Trigger) evaluateProfile(p model.CycleProfile, today calendar.Date, history []model.BudgetRecord, commit bool) Outcome {
	o := Outcome{ProfileID: p.ID, ProfileName: p.Name, State: Waiting}
	cfg := p.Config

	period, ok, err := cycle.LastCompleted(cfg.StartDate, cfg.Frequency.Recurrence(), today)
	if err != nil {
		o.Err = err
		return o
	}
	if !ok {
		return o
	}
	o.Period, o.HasPeriod = period, true

	if Exists(history, p, period.Start) {
		o.State = Committed
		return o
	}

	daily, err := t.repo.Daily(p.ID)
	if err != nil {
		o.Err = err
		return o
	}
	rules, err := t.repo.Future(p.ID)
	if err != nil {
		o.Err = err
		return o
	}
	res, err := ledger.Aggregate(daily, rules, period.Range())
	if err != nil {
		o.Err = fmt.Errorf("aggregating %s: %w", period, err)
		return o
	}
	if res.Empty() && !cfg.Income.IsPositive() {
		// Nothing to record for this cycle.
		return o
	}
	o.State = Due
	if !commit {
		return o
	}

	rec := budget.Build(t.schema, res.Totals, cfg.Income, cfg.Frequency, t.clock.Now())
	rec.ID = model.NewID()
	rec.Name = budget.AutomaticName(p.Name, period.Start)
	rec.CycleTag = budget.CycleTag(p.ID, period.Start)
	if err := t.repo.AppendBudget(rec); err != nil {
		o.Err = fmt.Errorf("saving budget: %w", err)
		return o
	}
	o.State = Committed
	o.Created = &rec
	return o
}

// Exists reports whether history already holds the record of p's cycle
// starting on start, matched by cycle tag or by the automatic name.
func Exists(history []model.BudgetRecord, p model.CycleProfile, start calendar.Date) bool {
	tag := budget.CycleTag(p.ID, start)
	name := budget.AutomaticName(p.Name, start)
	for _, r := range history {
		if r.CycleTag == tag || r.Name == name {
			return true
		}
	}
	return false
}

func (t *Trigger) record(rep Report) {
	if t.journal == nil {
		return
	}
	run := store.TriggerRun{
		RanAt:   t.clock.Now(),
		Day:     rep.Day.Key(),
		Skipped: rep.Skipped,
		Created: len(rep.Created()),
		Failed:  len(rep.Failed()),
	}
	var parts []string
	for _, o := range rep.Outcomes {
		part := fmt.Sprintf("%s=%s", o.ProfileID, o.State)
		if o.Err != nil {
			part += " (" + o.Err.Error() + ")"
		}
		parts = append(parts, part)
	}
	run.Detail = strings.Join(parts, "; ")
	if err := t.journal.RecordRun(run); err != nil {
		t.log.Printf("warning: journalling trigger run: %v", err)
	}
}
