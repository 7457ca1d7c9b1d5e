package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/cycle"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/trigger"
)

type fakeChecker struct {
	report   trigger.Report
	outcomes []trigger.Outcome
	err      error
}

func (f *fakeChecker) Run(context.Context) (trigger.Report, error) {
	return f.report, f.err
}

func (f *fakeChecker) Status(context.Context) ([]trigger.Outcome, error) {
	return f.outcomes, nil
}

func outcome(id string, state trigger.State, start string) trigger.Outcome {
	o := trigger.Outcome{ProfileID: id, ProfileName: id, State: state}
	if start != "" {
		d := calendar.MustParse(start)
		o.Period = cycle.Period{Start: d, End: d.AddDays(7)}
		o.HasPeriod = true
	}
	return o
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Profiles: []ProfileState{
		{ID: "a", State: trigger.Due, CycleStart: "2024-01-01"},
		{ID: "b", State: trigger.Committed, CycleStart: "2024-01-01"},
	}}
	curr := Snapshot{Profiles: []ProfileState{
		{ID: "a", State: trigger.Committed, CycleStart: "2024-01-01"},
		{ID: "b", State: trigger.Committed, CycleStart: "2024-01-01"},
		{ID: "c", State: trigger.Waiting},
	}}

	changes := diffSnapshots(prev, curr)
	if len(changes) != 2 {
		t.Fatalf("changes = %+v, want 2", changes)
	}
	if changes[0] != (StateChange{ProfileID: "a", From: trigger.Due, To: trigger.Committed}) {
		t.Fatalf("changes[0] = %+v", changes[0])
	}
	if changes[1].ProfileID != "c" || changes[1].From != "" {
		t.Fatalf("changes[1] = %+v", changes[1])
	}
	if len(diffSnapshots(curr, curr)) != 0 {
		t.Fatal("identical snapshots reported changes")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, &fakeChecker{})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce_EmitsEvents(t *testing.T) {
	day := calendar.MustParse("2024-01-08")
	fc := &fakeChecker{
		report:   trigger.Report{Day: day},
		outcomes: []trigger.Outcome{outcome("p1", trigger.Due, "2024-01-01")},
	}
	s := New(Config{}, fc)

	s.pollOnce(context.Background())
	// Nothing moved: no new event.
	s.pollOnce(context.Background())

	rec := model.BudgetRecord{ID: "r1", Name: "Automatic p1 (2024-01-01)"}
	fc.report = trigger.Report{Day: day, Outcomes: []trigger.Outcome{{ProfileID: "p1", State: trigger.Committed, Created: &rec}}}
	fc.outcomes = []trigger.Outcome{outcome("p1", trigger.Committed, "2024-01-01")}
	s.pollOnce(context.Background())

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	st := s.budgetsCreated
	s.mu.RUnlock()

	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Type != EventSnapshot || events[1].Type != EventStateChange || events[2].Type != EventBudgetCreated {
		t.Fatalf("event types = %s, %s, %s", events[0].Type, events[1].Type, events[2].Type)
	}
	if events[2].Budget == nil || events[2].Budget.ID != "r1" {
		t.Fatalf("budget event = %+v", events[2])
	}
	if events[0].Snapshot.Day != "2024-01-08" || events[0].Snapshot.Profiles[0].CycleEnd != "2024-01-08" {
		t.Fatalf("snapshot = %+v", events[0].Snapshot)
	}
	if st != 1 {
		t.Fatalf("budgets created = %d, want 1", st)
	}
}

func TestPollOnce_RecordsError(t *testing.T) {
	s := New(Config{}, &fakeChecker{err: errors.New("database is locked")})
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError == "" || st.PollCount != 1 || st.EventCount != 0 {
		t.Fatalf("status = %+v", st)
	}
}

func TestHandlers(t *testing.T) {
	fc := &fakeChecker{
		report:   trigger.Report{Day: calendar.MustParse("2024-01-08")},
		outcomes: []trigger.Outcome{outcome("p1", trigger.Committed, "2024-01-01")},
	}
	s := New(Config{DBPath: "test.db"}, fc)
	s.pollOnce(context.Background())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	resp.Body.Close()
	if st.DBPath != "test.db" || len(st.Summary.Profiles) != 1 || st.Summary.Profiles[0].State != trigger.Committed {
		t.Fatalf("status = %+v", st)
	}

	resp, err = http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	resp.Body.Close()
	if len(events) != 1 || events[0].Type != EventSnapshot {
		t.Fatalf("events = %+v", events)
	}
}
