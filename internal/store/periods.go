package store

import "fmt"

// Year and month are extracted from the ISO-8601 columns with strftime rather than
// by slicing the text, so the comparisons are on integers.
const (
	startYear  = `CAST(strftime('%Y', start_datetime) AS INTEGER)`
	startMonth = `CAST(strftime('%m', start_datetime) AS INTEGER)`
	endYear    = `CAST(strftime('%Y', end_datetime) AS INTEGER)`
	endMonth   = `CAST(strftime('%m', end_datetime) AS INTEGER)`
)

// ListWorksByMonth returns shifts whose start or end falls in the given month, so a
// shift crossing a month boundary shows up under both months.
func (s *Store) ListWorksByMonth(year, month int) ([]Work, error) {
	works, err := s.listWorks(
		`(`+startYear+` = ? AND `+startMonth+` = ?) OR (`+endYear+` = ? AND `+endMonth+` = ?)`,
		year, month, year, month,
	)
	if err != nil {
		return nil, fmt.Errorf("list works %04d-%02d: %w", year, month, err)
	}
	return works, nil
}

// WorkYears returns every year that appears in a shift's start or end, ascending.
func (s *Store) WorkYears() ([]int, error) {
	return s.distinctInts(`
		SELECT ` + startYear + ` AS y FROM Work
		UNION
		SELECT ` + endYear + ` FROM Work
		ORDER BY y`)
}

// WorkMonths returns the months of year in which some shift starts or ends, ascending.
func (s *Store) WorkMonths(year int) ([]int, error) {
	return s.distinctInts(`
		SELECT `+startMonth+` AS m FROM Work WHERE `+startYear+` = ?
		UNION
		SELECT `+endMonth+` FROM Work WHERE `+endYear+` = ?
		ORDER BY m`, year, year)
}

// MonthTotals sums stored shift values per month of the start date for year.
func (s *Store) MonthTotals(year int) ([12]float64, error) {
	var totals [12]float64
	rows, err := s.db.Query(`
		SELECT `+startMonth+` AS m, COALESCE(SUM(value), 0)
		FROM Work
		WHERE `+startYear+` = ?
		GROUP BY m`, year,
	)
	if err != nil {
		return totals, fmt.Errorf("month totals %d: %w", year, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m int
		var total float64
		if err := rows.Scan(&m, &total); err != nil {
			return totals, err
		}
		if m >= 1 && m <= 12 {
			totals[m-1] = total
		}
	}
	return totals, rows.Err()
}

func (s *Store) distinctInts(query string, args ...any) ([]int, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("distinct periods: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
