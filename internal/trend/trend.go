// Package trend ranks tags by how fast their counts grew between two dates.
package trend

import (
	"errors"
	"math"
	"sort"

	"cloud.google.com/go/civil"

	"github.com/ademuri/tag-trends/internal/store"
)

var (
	// ErrNoSnapshots means the series holds no data at all.
	ErrNoSnapshots = errors.New("no snapshots ingested")
	// ErrNotFound means the tag has no entries.
	ErrNotFound = errors.New("tag not found")
	// ErrInsufficientHistory means only one date is available where two are needed.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// Series is the read side of the time series store.
type Series interface {
	Dates() ([]civil.Date, error)
	DatesFor(tagname string) ([]civil.Date, error)
	CountAt(tagname string, date civil.Date) (int64, bool, error)
	SnapshotBetween(oldDate, newDate civil.Date) ([]store.Pivot, error)
}

var logStep = math.Log(1.01)

// Metric is the number of 1% compounding steps that turn oldCount into
// newCount. It is undefined, and ok is false, unless both counts are positive.
func Metric(oldCount, newCount int64) (metric float64, ok bool) {
	if oldCount <= 0 || newCount <= 0 {
		return 0, false
	}
	return math.Log(float64(newCount)/float64(oldCount)) / logStep, true
}

// ResolveDates fills in omitted (zero) dates from dates, which must be sorted
// ascending and non-empty. The newer date defaults to the last date; the older
// one to the latest date strictly before the newer one. When no such date
// exists the older date equals the newer one and found is false. An explicit
// older date that is not before the newer one is returned with found false.
func ResolveDates(dates []civil.Date, oldDate, newDate civil.Date) (resolvedOld, resolvedNew civil.Date, found bool) {
	if newDate.IsZero() {
		newDate = dates[len(dates)-1]
	}
	if !oldDate.IsZero() {
		return oldDate, newDate, oldDate.Before(newDate)
	}

	i := sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(newDate)
	})
	if i == 0 {
		return newDate, newDate, false
	}
	return dates[i-1], newDate, true
}
