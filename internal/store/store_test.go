package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/ademuri/tag-trends/internal/tags"
)

func createTestDb(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tag-trends.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { store.Close() })

	return store, dbPath
}

func day(d int) civil.Date {
	return civil.Date{Year: 2025, Month: 11, Day: d}
}

func TestIngestOverwritesDate(t *testing.T) {
	s, _ := createTestDb(t)

	if err := s.Ingest(day(7), tags.Snapshot{"female:a": 10, "female:b": 20}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := s.Ingest(day(8), tags.Snapshot{"female:a": 11}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := s.Ingest(day(7), tags.Snapshot{"female:a": 15, "female:c": 1}); err != nil {
		t.Fatalf("Ingest (repeat): %v", err)
	}

	cases := []struct {
		tag   string
		date  civil.Date
		count int64
		ok    bool
	}{
		{"female:a", day(7), 15, true},
		{"female:b", day(7), 0, false},
		{"female:c", day(7), 1, true},
		{"female:a", day(8), 11, true},
	}
	for _, c := range cases {
		count, ok, err := s.CountAt(c.tag, c.date)
		if err != nil {
			t.Fatalf("CountAt(%q, %s): %v", c.tag, c.date, err)
		}
		if count != c.count || ok != c.ok {
			t.Errorf("CountAt(%q, %s) = %d, %v; want %d, %v", c.tag, c.date, count, ok, c.count, c.ok)
		}
	}
}

func TestCountAtDistinguishesZero(t *testing.T) {
	s, _ := createTestDb(t)

	if err := s.Ingest(day(7), tags.Snapshot{"male:gone": 0}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	count, ok, err := s.CountAt("male:gone", day(7))
	if err != nil || !ok || count != 0 {
		t.Errorf("CountAt stored zero = %d, %v, %v; want 0, true, nil", count, ok, err)
	}
	_, ok, err = s.CountAt("male:never", day(7))
	if err != nil || ok {
		t.Errorf("CountAt missing = %v, %v; want false, nil", ok, err)
	}
}

func TestIngestRejectsNegativeWithoutPartialWrite(t *testing.T) {
	s, _ := createTestDb(t)

	if err := s.Ingest(day(7), tags.Snapshot{"a": 1}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := s.Ingest(day(7), tags.Snapshot{"a": 2, "b": -1}); err == nil {
		t.Fatalf("Expected error ingesting negative count")
	}

	count, ok, err := s.CountAt("a", day(7))
	if err != nil || !ok || count != 1 {
		t.Errorf("CountAt after failed ingest = %d, %v, %v; want 1, true, nil", count, ok, err)
	}
}

func TestDates(t *testing.T) {
	s, _ := createTestDb(t)

	// 2025-11-08 is missing on purpose.
	s.Ingest(day(10), tags.Snapshot{"a": 3, "b": 1})
	s.Ingest(day(7), tags.Snapshot{"a": 1})
	s.Ingest(day(9), tags.Snapshot{"b": 2})
	s.Ingest(day(11), tags.Snapshot{})

	dates, err := s.Dates()
	if err != nil {
		t.Fatalf("Dates: %v", err)
	}
	want := []civil.Date{day(7), day(9), day(10)}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("Dates() = %v, want %v", dates, want)
	}

	dates, err = s.DatesFor("b")
	if err != nil {
		t.Fatalf("DatesFor: %v", err)
	}
	want = []civil.Date{day(9), day(10)}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("DatesFor(b) = %v, want %v", dates, want)
	}

	dates, err = s.DatesFor("nope")
	if err != nil || len(dates) != 0 {
		t.Errorf("DatesFor(nope) = %v, %v; want empty", dates, err)
	}

	ingested, err := s.IngestedDates()
	if err != nil {
		t.Fatalf("IngestedDates: %v", err)
	}
	want = []civil.Date{day(7), day(9), day(10), day(11)}
	if !reflect.DeepEqual(ingested, want) {
		t.Errorf("IngestedDates() = %v, want %v", ingested, want)
	}
}

func TestSnapshotBetween(t *testing.T) {
	s, _ := createTestDb(t)

	s.Ingest(day(7), tags.Snapshot{"both": 10, "old-only": 5, "zero": 0})
	s.Ingest(day(8), tags.Snapshot{"both": 20, "new-only": 7, "zero": 3})
	s.Ingest(day(9), tags.Snapshot{"both": 99, "other-day": 1})

	pivots, err := s.SnapshotBetween(day(7), day(8))
	if err != nil {
		t.Fatalf("SnapshotBetween: %v", err)
	}

	if len(pivots) != 4 {
		t.Fatalf("Expected 4 pivot rows, got %d: %+v", len(pivots), pivots)
	}
	byName := make(map[string]Pivot)
	for _, p := range pivots {
		byName[p.Tagname] = p
	}

	if p := byName["both"]; !p.Old.Valid || p.Old.Int64 != 10 || !p.New.Valid || p.New.Int64 != 20 {
		t.Errorf("both = %+v", p)
	}
	if p := byName["old-only"]; !p.Old.Valid || p.New.Valid {
		t.Errorf("old-only = %+v", p)
	}
	if p := byName["new-only"]; p.Old.Valid || !p.New.Valid || p.New.Int64 != 7 {
		t.Errorf("new-only = %+v", p)
	}
	if p := byName["zero"]; !p.Old.Valid || p.Old.Int64 != 0 {
		t.Errorf("zero = %+v", p)
	}
	if _, ok := byName["other-day"]; ok {
		t.Errorf("Pivot should not contain tags from other dates")
	}
	if pivots[0].Tagname != "both" || pivots[3].Tagname != "zero" {
		t.Errorf("Pivot rows not ordered by tagname: %+v", pivots)
	}
}

func TestRoundTrip(t *testing.T) {
	s, dbPath := createTestDb(t)

	ingested := map[civil.Date]tags.Snapshot{
		day(7):  {"female:a": 100, "male:b": 50000, "artist:c": 0},
		day(9):  {"female:a": 120, "parody:d": 1 << 40},
		day(10): {"female:a": 90},
	}
	for date, snapshot := range ingested {
		if err := s.Ingest(date, snapshot); err != nil {
			t.Fatalf("Ingest(%s): %v", date, err)
		}
	}
	s.Close()

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("New (reopen): %v", err)
	}
	defer reopened.Close()

	for date, snapshot := range ingested {
		for name, want := range snapshot {
			got, ok, err := reopened.CountAt(name, date)
			if err != nil || !ok || got != want {
				t.Errorf("CountAt(%q, %s) = %d, %v, %v; want %d", name, date, got, ok, err, want)
			}
		}
	}

	entries, err := reopened.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("Expected 6 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Tagname > cur.Tagname || (prev.Tagname == cur.Tagname && !prev.Date.Before(cur.Date)) {
			t.Errorf("Entries not sorted by (tagname, date): %+v before %+v", prev, cur)
		}
	}
}

func TestTranslations(t *testing.T) {
	s, _ := createTestDb(t)

	if err := s.SaveTranslations(map[string]string{"female:a": "A", "male:b": "B"}); err != nil {
		t.Fatalf("SaveTranslations: %v", err)
	}
	if err := s.SaveTranslations(map[string]string{"female:a": "AA"}); err != nil {
		t.Fatalf("SaveTranslations (replace): %v", err)
	}

	got, err := s.Translations()
	if err != nil {
		t.Fatalf("Translations: %v", err)
	}
	want := map[string]string{"female:a": "AA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Translations() = %v, want %v", got, want)
	}
}
