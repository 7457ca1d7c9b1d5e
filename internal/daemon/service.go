// Package daemon provides the long-running background cycle checker.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/trigger"
)

// Checker runs the cycle-end trigger.
type Checker interface {
	Run(ctx context.Context) (trigger.Report, error)
	Status(ctx context.Context) ([]trigger.Outcome, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *log.Logger
}

// ProfileState is one profile's position in the cycle-end state machine.
type ProfileState struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	State      trigger.State `json:"state"`
	CycleStart string        `json:"cycle_start,omitempty"`
	CycleEnd   string        `json:"cycle_end,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Snapshot is a compact state for status/event payloads.
type Snapshot struct {
	At       time.Time      `json:"at"`
	Day      string         `json:"day"`
	Profiles []ProfileState `json:"profiles"`
}

// StateChange is a profile whose state moved between polls.
type StateChange struct {
	ProfileID string        `json:"profile_id"`
	From      trigger.State `json:"from"`
	To        trigger.State `json:"to"`
}

// Event is emitted whenever a poll observes something new.
type Event struct {
	ID        int64               `json:"id"`
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Snapshot  Snapshot            `json:"snapshot"`
	Changes   []StateChange       `json:"changes,omitempty"`
	Budget    *model.BudgetRecord `json:"budget,omitempty"`
}

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventStateChange   = "state_change"
	EventBudgetCreated = "budget_created"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	BudgetsCreated  int64     `json:"budgets_created"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	checker Checker
	log     *log.Logger
	now     func() time.Time

	mu             sync.RWMutex
	startedAt      time.Time
	lastPollAt     time.Time
	pollCount      int64
	budgetsCreated int64
	lastError      string
	hasSnapshot    bool
	snapshot       Snapshot
	nextEventID    int64
	events         []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, checker Checker) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Service{
		cfg:       cfg,
		checker:   checker,
		log:       logger,
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	rep, runErr := s.checker.Run(ctx)
	outcomes, statusErr := s.checker.Status(ctx)
	now := s.now()

	if err := errors.Join(runErr, statusErr); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Printf("paycycle daemon poll error: %v", err)
		return
	}

	snap := snapshotFromOutcomes(outcomes, rep, now)
	created := rep.Created()

	var pending []Event
	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.budgetsCreated += int64(len(created))
	s.lastError = ""

	if !prevExists {
		pending = append(pending, s.newEventLocked(EventSnapshot, snap))
	} else if changes := diffSnapshots(prev, snap); len(changes) > 0 {
		ev := s.newEventLocked(EventStateChange, snap)
		ev.Changes = changes
		pending = append(pending, ev)
	}
	for i := range created {
		ev := s.newEventLocked(EventBudgetCreated, snap)
		ev.Budget = &created[i]
		pending = append(pending, ev)
	}
	s.mu.Unlock()

	for _, ev := range pending {
		s.publishEvent(ev)
	}
	for _, rec := range created {
		s.log.Printf("paycycle daemon: saved %q", rec.Name)
	}
}

func (s *Service) newEventLocked(typ string, snap Snapshot) Event {
	s.nextEventID++
	return Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: snap.At,
		Snapshot:  snap,
	}
}

func snapshotFromOutcomes(outcomes []trigger.Outcome, rep trigger.Report, at time.Time) Snapshot {
	snap := Snapshot{At: at, Day: rep.Day.Key(), Profiles: make([]ProfileState, 0, len(outcomes))}
	for _, o := range outcomes {
		ps := ProfileState{ID: o.ProfileID, Name: o.ProfileName, State: o.State}
		if o.HasPeriod {
			ps.CycleStart = o.Period.Start.Key()
			ps.CycleEnd = o.Period.End.Key()
		}
		if o.Err != nil {
			ps.Error = o.Err.Error()
		}
		snap.Profiles = append(snap.Profiles, ps)
	}
	return snap
}

// diffSnapshots lists profiles whose state or cycle changed. Profiles that
// appear for the first time count as a change from the empty state.
func diffSnapshots(prev, curr Snapshot) []StateChange {
	before := make(map[string]ProfileState, len(prev.Profiles))
	for _, p := range prev.Profiles {
		before[p.ID] = p
	}
	var changes []StateChange
	for _, p := range curr.Profiles {
		old, ok := before[p.ID]
		if ok && old.State == p.State && old.CycleStart == p.CycleStart {
			continue
		}
		changes = append(changes, StateChange{ProfileID: p.ID, From: old.State, To: p.State})
	}
	return changes
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		BudgetsCreated:  s.budgetsCreated,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      EventSnapshot,
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
