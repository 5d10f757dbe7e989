// Package store persists the long-form tag count time series in SQLite.
//
// Every (tagname, date) pair has at most one row. A date is written in a
// single transaction, so a failed ingestion never leaves a partially written
// date behind and never touches other dates.
package store

import (
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS TagCount (
  tagname TEXT NOT NULL,
  date TEXT NOT NULL,
  count INTEGER NOT NULL CHECK (count >= 0),
  PRIMARY KEY (tagname, date)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS TagCountByDate ON TagCount (date, tagname);

CREATE TABLE IF NOT EXISTS Ingestion (
  date TEXT PRIMARY KEY,
  ingested_at DATETIME NOT NULL,
  tags INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS Translation (
  tagname TEXT PRIMARY KEY,
  translation TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Single writer; also keeps ":memory:" databases on one connection.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

func formatDate(d civil.Date) string {
	return d.String()
}

func parseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parsing stored date %q: %w", s, err)
	}
	return d, nil
}
