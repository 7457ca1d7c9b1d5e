// Package repository maps the persisted state collections onto domain types.
//
// Every collection is stored as one JSON value and written back whole. A
// value that fails to decode is logged and read as the collection's empty
// default so a damaged entry never blocks startup.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/store"
)

// State keys.
const (
	KeyBudgets        = "budgets"
	KeyGlobalSavings  = "global-savings"
	KeyProfiles       = "cycle-profiles"
	KeyActiveProfile  = "active-cycle-id"
	KeyAllDaily       = "all-daily"
	KeyAllFuture      = "all-future"
	KeyLastCycleCheck = "last-cycle-check"
)

// Backend is the raw key/value state store. Get returns store.ErrNotFound
// for missing keys.
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	PutMany(values map[string][]byte) error
	Delete(keys ...string) error
	Keys() ([]string, error)
}

// Repository reads and writes typed state through a Backend.
type Repository struct {
	b   Backend
	log *log.Logger
}

// New returns a repository over b. A nil logger discards warnings.
func New(b Backend, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Repository{b: b, log: logger}
}

// load decodes key into a value of type T, falling back to def when the key
// is missing or its value is malformed.
func load[T any](r *Repository, key string, def T) (T, error) {
	raw, err := r.b.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("loading %s: %w", key, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		r.log.Printf("warning: discarding malformed %s value: %v", key, err)
		return def, nil
	}
	return v, nil
}

func encode(key string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}
	return b, nil
}

func save(r *Repository, key string, v any) error {
	b, err := encode(key, v)
	if err != nil {
		return err
	}
	if err := r.b.Put(key, b); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Profiles returns every cycle profile.
func (r *Repository) Profiles() ([]model.CycleProfile, error) {
	return load(r, KeyProfiles, []model.CycleProfile{})
}

// SaveProfiles replaces the profile list.
func (r *Repository) SaveProfiles(ps []model.CycleProfile) error {
	return save(r, KeyProfiles, ps)
}

// Profile returns the profile with the given id.
func (r *Repository) Profile(id string) (model.CycleProfile, bool, error) {
	ps, err := r.Profiles()
	if err != nil {
		return model.CycleProfile{}, false, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, true, nil
		}
	}
	return model.CycleProfile{}, false, nil
}

// ActiveProfileID returns the selected profile id, or "" when none is set.
func (r *Repository) ActiveProfileID() (string, error) {
	return load(r, KeyActiveProfile, "")
}

// SetActiveProfileID selects a profile. An empty id clears the selection.
func (r *Repository) SetActiveProfileID(id string) error {
	if id == "" {
		return r.b.Delete(KeyActiveProfile)
	}
	return save(r, KeyActiveProfile, id)
}

// AllDaily returns the daily ledgers of every profile.
func (r *Repository) AllDaily() (model.AllDaily, error) {
	return load(r, KeyAllDaily, model.AllDaily{})
}

// SaveAllDaily replaces every daily ledger.
func (r *Repository) SaveAllDaily(all model.AllDaily) error {
	return save(r, KeyAllDaily, all)
}

// Daily returns the daily ledger of one profile.
func (r *Repository) Daily(profileID string) (model.DailyLedger, error) {
	all, err := r.AllDaily()
	if err != nil {
		return nil, err
	}
	if l, ok := all[profileID]; ok && l != nil {
		return l, nil
	}
	return model.DailyLedger{}, nil
}

// AllFuture returns the planned expense rules of every profile.
func (r *Repository) AllFuture() (model.AllFuture, error) {
	return load(r, KeyAllFuture, model.AllFuture{})
}

// SaveAllFuture replaces every planned expense list.
func (r *Repository) SaveAllFuture(all model.AllFuture) error {
	return save(r, KeyAllFuture, all)
}

// Future returns the planned expense rules of one profile.
func (r *Repository) Future(profileID string) ([]model.FutureExpense, error) {
	all, err := r.AllFuture()
	if err != nil {
		return nil, err
	}
	return all[profileID], nil
}

// Budgets returns the budget history, newest first.
func (r *Repository) Budgets() ([]model.BudgetRecord, error) {
	recs, err := load(r, KeyBudgets, []model.BudgetRecord{})
	if err != nil {
		return nil, err
	}
	SortBudgets(recs)
	return recs, nil
}

// SaveBudgets replaces the budget history.
func (r *Repository) SaveBudgets(recs []model.BudgetRecord) error {
	SortBudgets(recs)
	return save(r, KeyBudgets, recs)
}

// AppendBudget adds one record to the history with a single write.
func (r *Repository) AppendBudget(rec model.BudgetRecord) error {
	if rec.ID == model.CurrentCycleBudgetID {
		return fmt.Errorf("refusing to persist the live budget %q", rec.ID)
	}
	recs, err := r.Budgets()
	if err != nil {
		return err
	}
	return r.SaveBudgets(append(recs, rec))
}

// SortBudgets orders records by DateSaved, newest first.
func SortBudgets(recs []model.BudgetRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].DateSaved.After(recs[j].DateSaved)
	})
}

// GlobalSavings returns the stored global savings balance.
func (r *Repository) GlobalSavings() (decimal.Decimal, error) {
	return load(r, KeyGlobalSavings, decimal.Zero)
}

// SetGlobalSavings replaces the global savings balance.
func (r *Repository) SetGlobalSavings(v decimal.Decimal) error {
	return save(r, KeyGlobalSavings, v)
}

// LastCycleCheck returns the day the cycle-end trigger last ran. ok is false
// when it never ran. Both JSON strings and bare date keys are accepted.
func (r *Repository) LastCycleCheck() (calendar.Date, bool, error) {
	raw, err := r.b.Get(KeyLastCycleCheck)
	if errors.Is(err, store.ErrNotFound) {
		return calendar.Date{}, false, nil
	}
	if err != nil {
		return calendar.Date{}, false, fmt.Errorf("loading %s: %w", KeyLastCycleCheck, err)
	}
	d, err := calendar.Parse(strings.Trim(strings.TrimSpace(string(raw)), `"`))
	if err != nil {
		r.log.Printf("warning: discarding malformed %s value: %v", KeyLastCycleCheck, err)
		return calendar.Date{}, false, nil
	}
	return d, true, nil
}

// SetLastCycleCheck records the day the cycle-end trigger ran.
func (r *Repository) SetLastCycleCheck(d calendar.Date) error {
	return save(r, KeyLastCycleCheck, d)
}

// ResetLastCycleCheck forgets the last trigger day so the next run evaluates
// again.
func (r *Repository) ResetLastCycleCheck() error {
	return r.b.Delete(KeyLastCycleCheck)
}
