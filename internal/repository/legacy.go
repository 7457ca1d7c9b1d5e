package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/store"
)

// Keys of the single-cycle layout that predates profiles.
const (
	LegacyKeyPayCycle = "pay-cycle"
	LegacyKeyDaily    = "daily-expenses"
	LegacyKeyFuture   = "future-expenses"
)

var legacyKeys = []string{LegacyKeyPayCycle, LegacyKeyDaily, LegacyKeyFuture}

func (r *Repository) legacyValue(key string) ([]byte, bool, error) {
	raw, err := r.b.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", key, err)
	}
	return raw, true, nil
}

// MigrateLegacy converts the single-cycle layout into the default profile
// and removes the legacy keys. It reports whether anything was migrated.
// Running it again after a successful migration is a no-op.
func (r *Repository) MigrateLegacy() (bool, error) {
	values := make(map[string][]byte, len(legacyKeys))
	for _, k := range legacyKeys {
		raw, ok, err := r.legacyValue(k)
		if err != nil {
			return false, err
		}
		if ok {
			values[k] = raw
		}
	}
	if len(values) == 0 {
		return false, nil
	}
	r.log.Printf("migrating legacy single-cycle data into profile %q", model.DefaultProfileID)

	profile := model.DefaultProfile()
	if raw, ok := values[LegacyKeyPayCycle]; ok {
		var cfg model.CycleConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			r.log.Printf("warning: legacy %s is malformed, profile left unconfigured: %v", LegacyKeyPayCycle, err)
		} else if !cfg.StartDate.IsZero() && cfg.Frequency != "" {
			profile.Config = &cfg
		}
	}

	daily := model.DailyLedger{}
	if raw, ok := values[LegacyKeyDaily]; ok {
		if err := json.Unmarshal(raw, &daily); err != nil {
			r.log.Printf("warning: legacy %s is malformed, dropped: %v", LegacyKeyDaily, err)
			daily = model.DailyLedger{}
		}
	}

	var future []model.FutureExpense
	if raw, ok := values[LegacyKeyFuture]; ok {
		if err := json.Unmarshal(raw, &future); err != nil {
			r.log.Printf("warning: legacy %s is malformed, dropped: %v", LegacyKeyFuture, err)
			future = nil
		}
	}

	profiles, err := r.Profiles()
	if err != nil {
		return false, err
	}
	replaced := false
	for i := range profiles {
		if profiles[i].ID == profile.ID {
			profiles[i] = profile
			replaced = true
		}
	}
	if !replaced {
		profiles = append([]model.CycleProfile{profile}, profiles...)
	}

	allDaily, err := r.AllDaily()
	if err != nil {
		return false, err
	}
	allDaily[profile.ID] = daily

	allFuture, err := r.AllFuture()
	if err != nil {
		return false, err
	}
	allFuture[profile.ID] = future

	writes := make(map[string][]byte, 4)
	for key, v := range map[string]any{
		KeyProfiles:      profiles,
		KeyAllDaily:      allDaily,
		KeyAllFuture:     allFuture,
		KeyActiveProfile: profile.ID,
	} {
		b, err := encode(key, v)
		if err != nil {
			return false, err
		}
		writes[key] = b
	}
	if err := r.b.PutMany(writes); err != nil {
		return false, fmt.Errorf("writing migrated state: %w", err)
	}
	if err := r.b.Delete(legacyKeys...); err != nil {
		return false, fmt.Errorf("removing legacy keys: %w", err)
	}
	r.log.Printf("legacy migration complete: %d expense days, %d planned expenses", len(daily), len(future))
	return true, nil
}
