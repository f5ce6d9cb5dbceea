package store

import "fmt"

func insertRework(ex execer, r Rework) (int64, error) {
	res, err := ex.Exec(`INSERT INTO Rework (value, type) VALUES (?, ?)`, r.Value, r.Type)
	if err != nil {
		return 0, fmt.Errorf("insert rework: %w", classify(err))
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s *Store) GetRework(id int64) (*Rework, error) {
	r := &Rework{}
	err := s.db.QueryRow(`SELECT id, value, type FROM Rework WHERE id = ?`, id).Scan(&r.ID, &r.Value, &r.Type)
	if err != nil {
		return nil, fmt.Errorf("get rework %d: %w", id, classify(err))
	}
	return r, nil
}
