package store

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ademuri/tag-trends/internal/tags"
)

// Ingest replaces every entry for date with the counts in snapshot. Entries
// for other dates are not touched.
func (s *Store) Ingest(date civil.Date, snapshot tags.Snapshot) error {
	if !date.IsValid() {
		return fmt.Errorf("ingesting %v: invalid date", date)
	}
	for name, count := range snapshot {
		if name == "" {
			return fmt.Errorf("ingesting %s: empty tagname", date)
		}
		if count < 0 {
			return fmt.Errorf("ingesting %s: negative count %d for %q", date, count, name)
		}
	}

	key := formatDate(date)
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM TagCount WHERE date = ?", key); err != nil {
		return fmt.Errorf("clearing %s: %w", key, err)
	}

	stmt, err := tx.Prepare("INSERT INTO TagCount (tagname, date, count) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range snapshot.Names() {
		if _, err := stmt.Exec(name, key, snapshot[name]); err != nil {
			return fmt.Errorf("inserting %q for %s: %w", name, key, err)
		}
	}

	_, err = tx.Exec("INSERT OR REPLACE INTO Ingestion (date, ingested_at, tags) VALUES (?, ?, ?)",
		key, time.Now().UTC(), len(snapshot))
	if err != nil {
		return fmt.Errorf("recording ingestion of %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveTranslations replaces the translation table.
func (s *Store) SaveTranslations(translations map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM Translation"); err != nil {
		return fmt.Errorf("clearing translations: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO Translation (tagname, translation) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for tagname, text := range translations {
		if _, err := stmt.Exec(tagname, text); err != nil {
			return fmt.Errorf("inserting translation for %q: %w", tagname, err)
		}
	}

	return tx.Commit()
}
