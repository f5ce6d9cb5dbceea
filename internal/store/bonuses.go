package store

import (
	"database/sql"
	"fmt"
)

const bonusColumns = `id, name, value, by_default, type, state`

func scanBonus(row rowScanner) (Bonus, error) {
	var b Bonus
	var byDefault int
	if err := row.Scan(&b.ID, &b.Name, &b.Value, &byDefault, &b.Type, &b.State); err != nil {
		return Bonus{}, err
	}
	b.ByDefault = byDefault == 1
	return b, nil
}

func (s *Store) CreateBonus(b Bonus) (*Bonus, error) {
	id, err := insertBonus(s.db, b)
	if err != nil {
		return nil, err
	}
	return s.GetBonus(id)
}

func insertBonus(ex execer, b Bonus) (int64, error) {
	if b.State == 0 {
		b.State = StateActive
	}
	res, err := ex.Exec(
		`INSERT INTO Bonus (name, value, by_default, type, state) VALUES (?, ?, ?, ?, ?)`,
		b.Name, b.Value, boolInt(b.ByDefault), b.Type, b.State,
	)
	if err != nil {
		return 0, fmt.Errorf("insert bonus: %w", classify(err))
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// GetBonus resolves a bonus by id, retired or not.
func (s *Store) GetBonus(id int64) (*Bonus, error) {
	b, err := scanBonus(s.db.QueryRow(`SELECT `+bonusColumns+` FROM Bonus WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get bonus %d: %w", id, classify(err))
	}
	return &b, nil
}

func (s *Store) ListBonuses(includeRetired bool) ([]Bonus, error) {
	query := `SELECT ` + bonusColumns + ` FROM Bonus`
	if !includeRetired {
		query += fmt.Sprintf(` WHERE state = %d`, StateActive)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list bonuses: %w", err)
	}
	defer rows.Close()

	var bonuses []Bonus
	for rows.Next() {
		b, err := scanBonus(rows)
		if err != nil {
			return nil, err
		}
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

func (s *Store) UpdateBonus(b Bonus) error {
	res, err := s.db.Exec(
		`UPDATE Bonus SET name = ?, value = ?, by_default = ?, type = ?, state = ? WHERE id = ?`,
		b.Name, b.Value, boolInt(b.ByDefault), b.Type, b.State, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update bonus %d: %w", b.ID, classify(err))
	}
	if err := expectRow(res); err != nil {
		return fmt.Errorf("update bonus %d: %w", b.ID, err)
	}
	return nil
}

func (s *Store) RetireBonus(id int64) error {
	return retire(s.db, "Bonus", id)
}

func (s *Store) SupersedeBonus(oldID int64, next Bonus) (*Bonus, error) {
	var id int64
	err := s.withTx(func(tx *sql.Tx) error {
		if err := retire(tx, "Bonus", oldID); err != nil {
			return err
		}
		var err error
		id, err = insertBonus(tx, next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetBonus(id)
}
