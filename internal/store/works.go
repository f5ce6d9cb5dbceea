package store

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the ISO-8601 wall-clock form of Work.start_datetime/end_datetime.
const TimeLayout = "2006-01-02T15:04:05"

// spaceTimeLayout is the same form with a space separator, as older files store it.
const spaceTimeLayout = "2006-01-02 15:04:05"

const workColumns = `id, name, start_datetime, end_datetime, hours, rate_id, rework_id, value, json, state, description`

func scanWork(row rowScanner) (Work, error) {
	var w Work
	var start, end string
	var reworkID sql.NullInt64
	err := row.Scan(&w.ID, &w.Name, &start, &end, &w.Hours, &w.RateID, &reworkID,
		&w.Value, &w.JSON, &w.State, &w.Description)
	if err != nil {
		return Work{}, err
	}
	if reworkID.Valid {
		w.ReworkID = &reworkID.Int64
	}
	if w.Start, err = parseTime(start); err != nil {
		return Work{}, fmt.Errorf("work %d start: %w", w.ID, err)
	}
	if w.End, err = parseTime(end); err != nil {
		return Work{}, fmt.Errorf("work %d end: %w", w.ID, err)
	}
	return w, nil
}

func formatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.ParseInLocation(spaceTimeLayout, s, time.Local); err2 == nil {
		return t, nil
	}
	return time.Time{}, err
}

// CreateWork stores a shift with its optional rework and bonus links in one transaction.
func (s *Store) CreateWork(w Work, rework *Rework, links []BonusLink) (*Work, error) {
	var id int64
	err := s.withTx(func(tx *sql.Tx) error {
		if rework != nil {
			rid, err := insertRework(tx, *rework)
			if err != nil {
				return err
			}
			w.ReworkID = &rid
		} else {
			w.ReworkID = nil
		}
		if w.State == 0 {
			w.State = StateActive
		}

		res, err := tx.Exec(
			`INSERT INTO Work (name, start_datetime, end_datetime, hours, rate_id, rework_id, value, json, state, description)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.Name, formatTime(w.Start), formatTime(w.End), w.Hours, w.RateID, w.ReworkID,
			w.Value, w.JSON, w.State, w.Description,
		)
		if err != nil {
			return fmt.Errorf("insert work: %w", classify(err))
		}
		id, _ = res.LastInsertId()
		return insertLinks(tx, id, links)
	})
	if err != nil {
		return nil, err
	}
	return s.GetWork(id)
}

// ReplaceWork rewrites an existing shift. The rework row keeps its id when a rework
// is still present, is deleted when it is gone, and is inserted when it is new.
// Bonus links are replaced wholesale.
func (s *Store) ReplaceWork(w Work, rework *Rework, links []BonusLink) (*Work, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		var current sql.NullInt64
		err := tx.QueryRow(`SELECT rework_id FROM Work WHERE id = ?`, w.ID).Scan(&current)
		if err != nil {
			return fmt.Errorf("get work %d: %w", w.ID, classify(err))
		}

		var stale *int64
		switch {
		case current.Valid && rework != nil:
			if _, err := tx.Exec(`UPDATE Rework SET value = ?, type = ? WHERE id = ?`,
				rework.Value, rework.Type, current.Int64); err != nil {
				return fmt.Errorf("update rework %d: %w", current.Int64, err)
			}
			w.ReworkID = &current.Int64
		case current.Valid:
			stale = &current.Int64
			w.ReworkID = nil
		case rework != nil:
			rid, err := insertRework(tx, *rework)
			if err != nil {
				return err
			}
			w.ReworkID = &rid
		default:
			w.ReworkID = nil
		}
		if w.State == 0 {
			w.State = StateActive
		}

		_, err = tx.Exec(
			`UPDATE Work SET name = ?, start_datetime = ?, end_datetime = ?, hours = ?, rate_id = ?,
			 rework_id = ?, value = ?, json = ?, state = ?, description = ? WHERE id = ?`,
			w.Name, formatTime(w.Start), formatTime(w.End), w.Hours, w.RateID,
			w.ReworkID, w.Value, w.JSON, w.State, w.Description, w.ID,
		)
		if err != nil {
			return fmt.Errorf("update work %d: %w", w.ID, classify(err))
		}

		if stale != nil {
			if _, err := tx.Exec(`DELETE FROM Rework WHERE id = ?`, *stale); err != nil {
				return fmt.Errorf("delete rework %d: %w", *stale, err)
			}
		}

		if _, err := tx.Exec(`DELETE FROM Work_Bonus WHERE work_id = ?`, w.ID); err != nil {
			return fmt.Errorf("clear work bonuses %d: %w", w.ID, err)
		}
		return insertLinks(tx, w.ID, links)
	})
	if err != nil {
		return nil, err
	}
	return s.GetWork(w.ID)
}

// DeleteWork removes the shift's bonus links and then the shift itself.
// The referenced Rework row is not touched.
func (s *Store) DeleteWork(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM Work_Bonus WHERE work_id = ?`, id); err != nil {
			return fmt.Errorf("delete work bonuses %d: %w", id, err)
		}
		res, err := tx.Exec(`DELETE FROM Work WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete work %d: %w", id, classify(err))
		}
		if err := expectRow(res); err != nil {
			return fmt.Errorf("delete work %d: %w", id, err)
		}
		return nil
	})
}

func (s *Store) GetWork(id int64) (*Work, error) {
	w, err := scanWork(s.db.QueryRow(`SELECT `+workColumns+` FROM Work WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get work %d: %w", id, classify(err))
	}
	return &w, nil
}

func (s *Store) listWorks(where string, args ...any) ([]Work, error) {
	rows, err := s.db.Query(
		`SELECT `+workColumns+` FROM Work WHERE `+where+` ORDER BY start_datetime, id`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	defer rows.Close()

	var works []Work
	for rows.Next() {
		w, err := scanWork(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		works = append(works, w)
	}
	return works, rows.Err()
}

// ListWorkBonuses returns the Work_Bonus rows of a shift joined with their bonuses,
// retired bonuses included.
func (s *Store) ListWorkBonuses(workID int64) ([]WorkBonus, error) {
	rows, err := s.db.Query(`
		SELECT wb.work_id, wb.on_full_sum,
		       b.id, b.name, b.value, b.by_default, b.type, b.state
		FROM Work_Bonus wb
		JOIN Bonus b ON b.id = wb.bonus_id
		WHERE wb.work_id = ?
		ORDER BY wb.rowid`, workID,
	)
	if err != nil {
		return nil, fmt.Errorf("list work bonuses %d: %w", workID, err)
	}
	defer rows.Close()

	var links []WorkBonus
	for rows.Next() {
		var wb WorkBonus
		var onFull, byDefault int
		if err := rows.Scan(&wb.WorkID, &onFull, &wb.Bonus.ID, &wb.Bonus.Name, &wb.Bonus.Value,
			&byDefault, &wb.Bonus.Type, &wb.Bonus.State); err != nil {
			return nil, err
		}
		wb.BonusID = wb.Bonus.ID
		wb.OnFullSum = onFull == 1
		wb.Bonus.ByDefault = byDefault == 1
		links = append(links, wb)
	}
	return links, rows.Err()
}

func insertLinks(tx *sql.Tx, workID int64, links []BonusLink) error {
	for _, l := range links {
		_, err := tx.Exec(
			`INSERT INTO Work_Bonus (work_id, bonus_id, on_full_sum) VALUES (?, ?, ?)`,
			workID, l.BonusID, boolInt(l.OnFullSum),
		)
		if err != nil {
			return fmt.Errorf("insert work bonus %d/%d: %w", workID, l.BonusID, classify(err))
		}
	}
	return nil
}
