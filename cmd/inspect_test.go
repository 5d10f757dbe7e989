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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/ademuri/tag-trends/internal/tags"
)

func TestPrintInspection(t *testing.T) {
	dbPath := twoDayDb(t)

	out := new(bytes.Buffer)
	if err := printInspection(out, dbPath, "male:glasses", "", ""); err != nil {
		t.Fatalf("printInspection: %v", err)
	}
	for _, want := range []string{"male:glasses", "2025-11-07", "50", "400", "Metric: 208.98", "growth: 8.000x"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestPrintInspectionMessages(t *testing.T) {
	dbPath := createTestDb(t, map[civil.Date]tags.Snapshot{
		day(7): {"female:glasses": 100},
		day(8): {"female:glasses": 200, "female:new": 5},
	})

	out := new(bytes.Buffer)
	if err := printInspection(out, dbPath, "female:missing", "", ""); err != nil {
		t.Fatalf("printInspection: %v", err)
	}
	if !strings.Contains(out.String(), "was not found") {
		t.Errorf("Expected a not found message, got:\n%s", out.String())
	}

	out.Reset()
	if err := printInspection(out, dbPath, "female:new", "", ""); err != nil {
		t.Fatalf("printInspection: %v", err)
	}
	if !strings.Contains(out.String(), "not have enough history") {
		t.Errorf("Expected an insufficient history message, got:\n%s", out.String())
	}

	out.Reset()
	if err := printInspection(out, dbPath, "female:glasses", "2025-11-08", "2025-11-08"); err != nil {
		t.Fatalf("printInspection: %v", err)
	}
	if !strings.Contains(out.String(), "not have enough history") {
		t.Errorf("Expected an insufficient history message for equal dates, got:\n%s", out.String())
	}

	if err := printInspection(out, dbPath, "female:glasses", "", "2025-11"); err == nil {
		t.Errorf("Expected an error for a month in --to")
	}
}

func TestListDates(t *testing.T) {
	dbPath := createTestDb(t, map[civil.Date]tags.Snapshot{
		day(7): {"female:glasses": 100},
		day(9): {"female:glasses": 200, "female:new": 5},
	})

	out := new(bytes.Buffer)
	if err := listDates(out, dbPath, nil); err != nil {
		t.Fatalf("listDates: %v", err)
	}
	if out.String() != "2025-11-07\n2025-11-09\n" {
		t.Errorf("Unexpected dates:\n%s", out.String())
	}

	out.Reset()
	if err := listDates(out, dbPath, []string{"female:new"}); err != nil {
		t.Fatalf("listDates: %v", err)
	}
	if out.String() != "2025-11-09\n" {
		t.Errorf("Unexpected dates for female:new:\n%s", out.String())
	}
}

func TestExportEntries(t *testing.T) {
	dbPath := createTestDb(t, map[civil.Date]tags.Snapshot{
		day(8): {"b": 2, "a": 1},
		day(7): {"b": 0},
	})

	out := new(bytes.Buffer)
	if err := exportEntries(out, dbPath); err != nil {
		t.Fatalf("exportEntries: %v", err)
	}
	want := "tagname,date,count\na,2025-11-08,1\nb,2025-11-07,0\nb,2025-11-08,2\n"
	if out.String() != want {
		t.Errorf("exportEntries wrote:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestExportToFile(t *testing.T) {
	dbPath := createTestDb(t, map[civil.Date]tags.Snapshot{
		day(7): {"a": 1},
	})
	path := filepath.Join(t.TempDir(), "export.csv")

	if err := exportToFile(path, dbPath); err != nil {
		t.Fatalf("exportToFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if want := "tagname,date,count\na,2025-11-07,1\n"; string(data) != want {
		t.Errorf("export file contains:\n%s\nwant:\n%s", data, want)
	}

	if err := exportToFile(filepath.Join(t.TempDir(), "missing", "export.csv"), dbPath); err == nil {
		t.Errorf("Expected an error for an unwritable path")
	}
}
