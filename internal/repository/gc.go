package repository

import "sort"

// CollectOrphans removes daily ledgers and planned expense lists keyed to
// profiles that no longer exist. It returns the removed profile ids.
func (r *Repository) CollectOrphans() ([]string, error) {
	profiles, err := r.Profiles()
	if err != nil {
		return nil, err
	}
	live := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		live[p.ID] = true
	}

	removed := make(map[string]bool)

	daily, err := r.AllDaily()
	if err != nil {
		return nil, err
	}
	dailyChanged := false
	for id := range daily {
		if !live[id] {
			delete(daily, id)
			removed[id] = true
			dailyChanged = true
		}
	}

	future, err := r.AllFuture()
	if err != nil {
		return nil, err
	}
	futureChanged := false
	for id := range future {
		if !live[id] {
			delete(future, id)
			removed[id] = true
			futureChanged = true
		}
	}

	writes := make(map[string][]byte, 2)
	if dailyChanged {
		b, err := encode(KeyAllDaily, daily)
		if err != nil {
			return nil, err
		}
		writes[KeyAllDaily] = b
	}
	if futureChanged {
		b, err := encode(KeyAllFuture, future)
		if err != nil {
			return nil, err
		}
		writes[KeyAllFuture] = b
	}
	if len(writes) > 0 {
		if err := r.b.PutMany(writes); err != nil {
			return nil, err
		}
	}

	ids := make([]string, 0, len(removed))
	for id := range removed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > 0 {
		r.log.Printf("removed orphaned data of %d deleted profile(s): %v", len(ids), ids)
	}
	return ids, nil
}
