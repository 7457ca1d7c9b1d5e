package store

import (
	"database/sql"
	"time"
)

// TriggerRun is one journalled evaluation of the cycle-end trigger.
type TriggerRun struct {
	ID      int64
	RanAt   time.Time
	Day     string
	Skipped bool
	Created int
	Failed  int
	Detail  string
}

// RecordRun appends a trigger run to the journal.
func (s *Store) RecordRun(r TriggerRun) error {
	skipped := 0
	if r.Skipped {
		skipped = 1
	}
	_, err := s.db.Exec(`INSERT INTO trigger_runs (ran_at, day, skipped, created, failed, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.RanAt.UTC().Format(time.RFC3339), r.Day, skipped, r.Created, r.Failed, r.Detail)
	return err
}

// RecentRuns returns up to limit journalled runs, newest first.
func (s *Store) RecentRuns(limit int) ([]TriggerRun, error) {
	rows, err := s.db.Query(`SELECT id, ran_at, day, skipped, created, failed, detail
		FROM trigger_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []TriggerRun
	for rows.Next() {
		var r TriggerRun
		var ranAt string
		var skipped int
		var detail sql.NullString
		if err := rows.Scan(&r.ID, &ranAt, &r.Day, &skipped, &r.Created, &r.Failed, &detail); err != nil {
			return nil, err
		}
		r.RanAt, _ = time.Parse(time.RFC3339, ranAt)
		r.Skipped = skipped != 0
		if detail.Valid {
			r.Detail = detail.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunCount returns the number of journalled runs.
func (s *Store) RunCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM trigger_runs").Scan(&count)
	return count, err
}
