package store

import (
	"database/sql"
	"fmt"
)

const rateColumns = `id, name, value, by_default, type, hours, state`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRate(row rowScanner) (Rate, error) {
	var r Rate
	var byDefault int
	if err := row.Scan(&r.ID, &r.Name, &r.Value, &byDefault, &r.Type, &r.Hours, &r.State); err != nil {
		return Rate{}, err
	}
	r.ByDefault = byDefault == 1
	return r, nil
}

func (s *Store) CreateRate(r Rate) (*Rate, error) {
	id, err := insertRate(s.db, r)
	if err != nil {
		return nil, err
	}
	return s.GetRate(id)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRate(ex execer, r Rate) (int64, error) {
	if r.State == 0 {
		r.State = StateActive
	}
	res, err := ex.Exec(
		`INSERT INTO Rate (name, value, by_default, type, hours, state) VALUES (?, ?, ?, ?, ?, ?)`,
		r.Name, r.Value, boolInt(r.ByDefault), r.Type, r.Hours, r.State,
	)
	if err != nil {
		return 0, fmt.Errorf("insert rate: %w", classify(err))
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// GetRate resolves a rate by id regardless of its state, so retired rates
// referenced by old shifts stay readable.
func (s *Store) GetRate(id int64) (*Rate, error) {
	r, err := scanRate(s.db.QueryRow(`SELECT `+rateColumns+` FROM Rate WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get rate %d: %w", id, classify(err))
	}
	return &r, nil
}

// ListRates returns rates in insertion order.
func (s *Store) ListRates(includeRetired bool) ([]Rate, error) {
	query := `SELECT ` + rateColumns + ` FROM Rate`
	if !includeRetired {
		query += fmt.Sprintf(` WHERE state = %d`, StateActive)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

// UpdateRate writes every mutable column of r in place.
func (s *Store) UpdateRate(r Rate) error {
	res, err := s.db.Exec(
		`UPDATE Rate SET name = ?, value = ?, by_default = ?, type = ?, hours = ?, state = ? WHERE id = ?`,
		r.Name, r.Value, boolInt(r.ByDefault), r.Type, r.Hours, r.State, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update rate %d: %w", r.ID, classify(err))
	}
	if err := expectRow(res); err != nil {
		return fmt.Errorf("update rate %d: %w", r.ID, err)
	}
	return nil
}

func (s *Store) RetireRate(id int64) error {
	return retire(s.db, "Rate", id)
}

// SupersedeRate retires oldID and inserts next in one transaction, returning the new row.
func (s *Store) SupersedeRate(oldID int64, next Rate) (*Rate, error) {
	var id int64
	err := s.withTx(func(tx *sql.Tx) error {
		if err := retire(tx, "Rate", oldID); err != nil {
			return err
		}
		var err error
		id, err = insertRate(tx, next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetRate(id)
}

func retire(ex execer, table string, id int64) error {
	res, err := ex.Exec(
		fmt.Sprintf(`UPDATE %s SET state = ? WHERE id = ?`, table), StateRetired, id,
	)
	if err != nil {
		return fmt.Errorf("retire %s %d: %w", table, id, err)
	}
	if err := expectRow(res); err != nil {
		return fmt.Errorf("retire %s %d: %w", table, id, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
