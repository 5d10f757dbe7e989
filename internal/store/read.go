package store

import (
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
)

// Entry is one row of the time series.
type Entry struct {
	Tagname string
	Date    civil.Date
	Count   int64
}

// Pivot holds one tag's counts at two dates. A count is invalid when the tag
// has no entry at that date.
type Pivot struct {
	Tagname string
	Old     sql.NullInt64
	New     sql.NullInt64
}

// Dates returns the distinct dates with data, ascending.
func (s *Store) Dates() ([]civil.Date, error) {
	rows, err := s.db.Query("SELECT DISTINCT date FROM TagCount ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("querying dates: %w", err)
	}
	return scanDates(rows)
}

// DatesFor returns the dates on which tagname has an entry, ascending.
func (s *Store) DatesFor(tagname string) ([]civil.Date, error) {
	rows, err := s.db.Query("SELECT date FROM TagCount WHERE tagname = ? ORDER BY date", tagname)
	if err != nil {
		return nil, fmt.Errorf("querying dates for %q: %w", tagname, err)
	}
	return scanDates(rows)
}

// IngestedDates returns the dates recorded by Ingest, including dates whose
// snapshot was empty.
func (s *Store) IngestedDates() ([]civil.Date, error) {
	rows, err := s.db.Query("SELECT date FROM Ingestion ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("querying ingestions: %w", err)
	}
	return scanDates(rows)
}

func scanDates(rows *sql.Rows) ([]civil.Date, error) {
	defer rows.Close()

	var dates []civil.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// CountAt looks up a single entry. ok is false when there is no entry, which
// is distinct from a stored zero.
func (s *Store) CountAt(tagname string, date civil.Date) (count int64, ok bool, err error) {
	row := s.db.QueryRow("SELECT count FROM TagCount WHERE tagname = ? AND date = ?", tagname, formatDate(date))
	err = row.Scan(&count)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("getting count of %q at %s: %w", tagname, date, err)
	}
	return count, true, nil
}

// SnapshotBetween pivots the two date slices into one row per tag present at
// either date, ordered by tag name.
func (s *Store) SnapshotBetween(oldDate, newDate civil.Date) ([]Pivot, error) {
	const query = `
		SELECT tagname,
			MAX(CASE WHEN date = ? THEN count END),
			MAX(CASE WHEN date = ? THEN count END)
		FROM TagCount
		WHERE date IN (?, ?)
		GROUP BY tagname
		ORDER BY tagname
	`
	oldKey, newKey := formatDate(oldDate), formatDate(newDate)
	rows, err := s.db.Query(query, oldKey, newKey, oldKey, newKey)
	if err != nil {
		return nil, fmt.Errorf("pivoting %s and %s: %w", oldKey, newKey, err)
	}
	defer rows.Close()

	var pivots []Pivot
	for rows.Next() {
		var p Pivot
		if err := rows.Scan(&p.Tagname, &p.Old, &p.New); err != nil {
			return nil, err
		}
		pivots = append(pivots, p)
	}
	return pivots, rows.Err()
}

// Entries returns the whole time series ordered by (tagname, date).
func (s *Store) Entries() ([]Entry, error) {
	rows, err := s.db.Query("SELECT tagname, date, count FROM TagCount ORDER BY tagname, date")
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var raw string
		if err := rows.Scan(&e.Tagname, &raw, &e.Count); err != nil {
			return nil, err
		}
		if e.Date, err = parseDate(raw); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Translations returns the translation table keyed by tag name.
func (s *Store) Translations() (map[string]string, error) {
	rows, err := s.db.Query("SELECT tagname, translation FROM Translation")
	if err != nil {
		return nil, fmt.Errorf("querying translations: %w", err)
	}
	defer rows.Close()

	translations := make(map[string]string)
	for rows.Next() {
		var tagname, text string
		if err := rows.Scan(&tagname, &text); err != nil {
			return nil, err
		}
		translations[tagname] = text
	}
	return translations, rows.Err()
}
