package trigger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/repository"
	"github.com/theirongolddev/paycycle/internal/store"
)

func mustDate(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.Parse(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// failingBackend rejects writes to one key.
type failingBackend struct {
	*store.Memory
	failKey string
}

func (f failingBackend) Put(key string, value []byte) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Memory.Put(key, value)
}

type fixture struct {
	repo *repository.Repository
	mem  *store.Memory
}

func newFixture(t *testing.T, backend repository.Backend, mem *store.Memory, income int64) fixture {
	t.Helper()
	repo := repository.New(backend, nil)
	profile := model.CycleProfile{
		ID:   "p1",
		Name: "Main",
		Config: &model.CycleConfig{
			Frequency: model.CycleWeekly,
			StartDate: mustDate(t, "2024-01-01"),
			Income:    decimal.NewFromInt(income),
		},
	}
	if err := repo.SaveProfiles([]model.CycleProfile{profile}); err != nil {
		t.Fatalf("SaveProfiles: %v", err)
	}
	return fixture{repo: repo, mem: mem}
}

func (f fixture) trigger(t *testing.T, today string) *Trigger {
	t.Helper()
	return New(f.repo, Options{
		Clock:    calendar.DateClock(mustDate(t, today), time.UTC),
		Location: time.UTC,
		Journal:  f.mem,
	})
}

func memFixture(t *testing.T, income int64) fixture {
	mem := store.NewMemory()
	return newFixture(t, mem, mem, income)
}

func TestRun_CreatesRecordForCompletedCycle(t *testing.T) {
	f := memFixture(t, 500)
	if err := f.repo.SaveAllDaily(model.AllDaily{"p1": {
		"2024-01-03": {{ID: "e1", Amount: decimal.NewFromInt(50), CategoryID: "food"}},
	}}); err != nil {
		t.Fatal(err)
	}
	if err := f.repo.SaveAllFuture(model.AllFuture{"p1": {{
		ID: "r1", Amount: decimal.NewFromInt(10), CategoryID: "transport",
		StartDate: mustDate(t, "2024-01-01"), Frequency: model.ExpenseWeekly,
	}}}); err != nil {
		t.Fatal(err)
	}

	rep, err := f.trigger(t, "2024-01-07").Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	created := rep.Created()
	if len(created) != 1 {
		t.Fatalf("created %d records, want 1", len(created))
	}
	rec := created[0]
	if rec.Name != "Automatic Main (2024-01-01)" || rec.CycleTag != "p1@2024-01-01" {
		t.Fatalf("record = %q tag %q", rec.Name, rec.CycleTag)
	}
	if !rec.Amount("savings").Equal(decimal.NewFromInt(440)) {
		t.Fatalf("savings = %s, want 440", rec.Amount("savings"))
	}

	last, ok, _ := f.repo.LastCycleCheck()
	if !ok || last.Key() != "2024-01-07" {
		t.Fatalf("last check = %s ok=%v, want 2024-01-07", last, ok)
	}
}

func TestRun_SameDayIsSkipped(t *testing.T) {
	f := memFixture(t, 500)
	tr := f.trigger(t, "2024-01-09")

	first, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(first.Created()) != 1 {
		t.Fatalf("first run created %d, want 1", len(first.Created()))
	}

	second, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !second.Skipped || len(second.Created()) != 0 {
		t.Fatalf("second run = %+v, want skipped", second)
	}

	recs, _ := f.repo.Budgets()
	if len(recs) != 1 {
		t.Fatalf("history = %d, want 1", len(recs))
	}

	runs, _ := f.mem.RecentRuns(10)
	if len(runs) != 2 || !runs[0].Skipped || runs[1].Created != 1 {
		t.Fatalf("journal = %+v", runs)
	}
}

func TestRun_NextDayDoesNotDuplicate(t *testing.T) {
	f := memFixture(t, 500)
	if _, err := f.trigger(t, "2024-01-09").Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rep, err := f.trigger(t, "2024-01-10").Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Skipped {
		t.Fatal("next-day run was skipped")
	}
	if len(rep.Created()) != 0 {
		t.Fatalf("next-day run created %d records, want 0", len(rep.Created()))
	}
	if rep.Outcomes[0].State != Committed {
		t.Fatalf("state = %s, want COMMITTED", rep.Outcomes[0].State)
	}

	// A marker reset must not duplicate either.
	if err := f.repo.ResetLastCycleCheck(); err != nil {
		t.Fatal(err)
	}
	rep, _ = f.trigger(t, "2024-01-10").Run(context.Background())
	if len(rep.Created()) != 0 {
		t.Fatal("rerun after marker reset created a duplicate")
	}
}

func TestRun_DetectsRecordByName(t *testing.T) {
	f := memFixture(t, 500)
	if err := f.repo.AppendBudget(model.BudgetRecord{ID: "legacy", Name: "Automatic Main (2024-01-01)"}); err != nil {
		t.Fatal(err)
	}
	rep, err := f.trigger(t, "2024-01-07").Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Created()) != 0 {
		t.Fatal("record created although one with the automatic name exists")
	}
}

func TestRun_MidCycleRecordsPreviousCycle(t *testing.T) {
	f := memFixture(t, 500)
	rep, err := f.trigger(t, "2024-01-17").Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	created := rep.Created()
	if len(created) != 1 || created[0].CycleTag != "p1@2024-01-08" {
		t.Fatalf("created = %+v, want the 2024-01-08 cycle", created)
	}
}

func TestRun_NothingToRecord(t *testing.T) {
	f := memFixture(t, 0)
	rep, err := f.trigger(t, "2024-01-07").Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Created()) != 0 {
		t.Fatal("record created with no income and no expenses")
	}
	if rep.Outcomes[0].State != Waiting {
		t.Fatalf("state = %s, want WAITING", rep.Outcomes[0].State)
	}
}

func TestRun_WaitingInsideFirstCycle(t *testing.T) {
	f := memFixture(t, 500)
	rep, err := f.trigger(t, "2024-01-03").Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Outcomes[0].State != Waiting || rep.Outcomes[0].HasPeriod {
		t.Fatalf("outcome = %+v, want WAITING without a period", rep.Outcomes[0])
	}
}

func TestRun_FailureStillAdvancesMarker(t *testing.T) {
	mem := store.NewMemory()
	f := newFixture(t, failingBackend{Memory: mem, failKey: repository.KeyBudgets}, mem, 500)

	rep, err := f.trigger(t, "2024-01-07").Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Failed()) != 1 {
		t.Fatalf("failed = %d, want 1", len(rep.Failed()))
	}
	if len(rep.Created()) != 0 {
		t.Fatal("failed run reported a created record")
	}
	last, ok, _ := f.repo.LastCycleCheck()
	if !ok || last.Key() != "2024-01-07" {
		t.Fatalf("last check = %s ok=%v, want 2024-01-07", last, ok)
	}
	recs, _ := f.repo.Budgets()
	if len(recs) != 0 {
		t.Fatalf("history = %d, want 0", len(recs))
	}
}

func TestStatusDoesNotWrite(t *testing.T) {
	f := memFixture(t, 500)
	outcomes, err := f.trigger(t, "2024-01-07").Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].State != Due {
		t.Fatalf("outcomes = %+v, want one DUE", outcomes)
	}
	if _, ok, _ := f.repo.LastCycleCheck(); ok {
		t.Fatal("Status set the last-check marker")
	}
	if recs, _ := f.repo.Budgets(); len(recs) != 0 {
		t.Fatal("Status wrote a record")
	}
}

func TestRun_CanceledContext(t *testing.T) {
	f := memFixture(t, 500)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.trigger(t, "2024-01-07").Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
