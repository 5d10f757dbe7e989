/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/ademuri/tag-trends/internal/store"
	"github.com/ademuri/tag-trends/internal/tags"
)

func day(d int) civil.Date {
	return civil.Date{Year: 2025, Month: 11, Day: d}
}

// createTestDb returns the path of a database holding the given snapshots.
func createTestDb(t *testing.T, snapshots map[civil.Date]tags.Snapshot) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tag-trends.db")

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s) error: %v", dbPath, err)
	}
	defer st.Close()

	for date, snapshot := range snapshots {
		if err := st.Ingest(date, snapshot); err != nil {
			t.Fatalf("Ingest(%s) error: %v", date, err)
		}
	}

	return dbPath
}

func twoDayDb(t *testing.T) string {
	t.Helper()
	return createTestDb(t, map[civil.Date]tags.Snapshot{
		day(7): {
			"female:glasses":  100,
			"female:ponytail": 1000,
			"male:glasses":    50,
			"location:city":   10,
			"artist:someone":  200,
		},
		day(8): {
			"female:glasses":  200,
			"female:ponytail": 1100,
			"male:glasses":    400,
			"location:city":   1000,
			"artist:someone":  200,
		},
	})
}

func openTestStore(t *testing.T, dbPath string) *store.Store {
	t.Helper()
	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
