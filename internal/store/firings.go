package store

import (
	"fmt"
	"time"
)

const firingColumns = `id, fired_at, action_time, kind, content, source, status, snooze_minutes, error`

func (s *Store) AddFiring(f Firing) (int64, error) {
	if f.FiredAt.IsZero() {
		f.FiredAt = time.Now()
	}
	if f.Status == "" {
		f.Status = StatusOK
	}
	if f.Source == "" {
		f.Source = "schedule"
	}
	res, err := s.db.Exec(
		`INSERT INTO firings (fired_at, action_time, kind, content, source, status, snooze_minutes, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FiredAt.UTC().Format(time.RFC3339), f.ActionTime, f.Kind, f.Content,
		f.Source, f.Status, f.SnoozeMinutes, f.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("add firing: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) GetFiring(id int64) (*Firing, error) {
	row := s.db.QueryRow(`SELECT `+firingColumns+` FROM firings WHERE id = ?`, id)
	f, err := scanFiring(row)
	if err != nil {
		return nil, fmt.Errorf("get firing %d: %w", id, err)
	}
	return f, nil
}

// MarkSnoozed records that the user deferred a firing by minutes.
func (s *Store) MarkSnoozed(id int64, minutes int) error {
	res, err := s.db.Exec(
		`UPDATE firings SET status = ?, snooze_minutes = ? WHERE id = ?`,
		StatusSnoozed, minutes, id,
	)
	if err != nil {
		return fmt.Errorf("mark snoozed %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark snoozed %d: no such firing", id)
	}
	return nil
}

// ListFirings returns matching firings, newest first.
func (s *Store) ListFirings(f FiringFilter) ([]Firing, error) {
	query := `SELECT ` + firingColumns + ` FROM firings WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND fired_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND fired_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY fired_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list firings: %w", err)
	}
	defer rows.Close()

	var firings []Firing
	for rows.Next() {
		fr, err := scanFiring(rows)
		if err != nil {
			return nil, err
		}
		firings = append(firings, *fr)
	}
	return firings, rows.Err()
}

// HourlyCounts buckets the firings of day's local calendar date by local hour.
func (s *Store) HourlyCounts(day time.Time) ([24]int, error) {
	var counts [24]int
	from, to := dayBounds(day)
	firings, err := s.ListFirings(FiringFilter{From: &from, To: &to})
	if err != nil {
		return counts, fmt.Errorf("hourly counts: %w", err)
	}
	for _, f := range firings {
		counts[f.FiredAt.In(day.Location()).Hour()]++
	}
	return counts, nil
}

// GetDaySummary totals day's firings by status.
func (s *Store) GetDaySummary(day time.Time) (DaySummary, error) {
	from, to := dayBounds(day)
	sum := DaySummary{Date: from.Format("2006-01-02")}
	rows, err := s.db.Query(`
		SELECT status, COUNT(*)
		FROM firings
		WHERE fired_at >= ? AND fired_at < ?
		GROUP BY status`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return sum, fmt.Errorf("day summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return sum, err
		}
		sum.Total += n
		switch status {
		case StatusOK:
			sum.OK = n
		case StatusFailed:
			sum.Failed = n
		case StatusSnoozed:
			sum.Snoozed = n
		}
	}
	return sum, rows.Err()
}

// PruneFirings deletes history older than before and returns the count removed.
func (s *Store) PruneFirings(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM firings WHERE fired_at < ?`, before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune firings: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFiring(r rowScanner) (*Firing, error) {
	f := &Firing{}
	var firedAt string
	if err := r.Scan(&f.ID, &firedAt, &f.ActionTime, &f.Kind, &f.Content,
		&f.Source, &f.Status, &f.SnoozeMinutes, &f.Error); err != nil {
		return nil, err
	}
	f.FiredAt, _ = time.Parse(time.RFC3339, firedAt)
	return f, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return from, from.AddDate(0, 0, 1)
}
