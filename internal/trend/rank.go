package trend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
)

// Options selects the dates and rows for RankTrending. Zero dates are
// resolved from the whole series.
type Options struct {
	// Only tags starting with Prefix are ranked. Empty means all tags.
	Prefix string

	// Tags starting with any of these are skipped.
	ExcludePrefixes []string

	// Only tags whose count at the newer date is greater than MinCount are ranked.
	MinCount int64

	// Number of rows to return. Zero returns every ranked row.
	N int

	Old civil.Date
	New civil.Date
}

func (o Options) matches(tagname string) bool {
	if !strings.HasPrefix(tagname, o.Prefix) {
		return false
	}
	for _, excluded := range o.ExcludePrefixes {
		if excluded != "" && strings.HasPrefix(tagname, excluded) {
			return false
		}
	}
	return true
}

// Row is one ranked tag.
type Row struct {
	Tagname  string
	OldCount int64
	NewCount int64
	Metric   float64
}

// GrowthFactor is NewCount / OldCount.
func (r Row) GrowthFactor() float64 {
	return float64(r.NewCount) / float64(r.OldCount)
}

// PercentChange is the growth as a percentage rounded to three decimals, for display.
func (r Row) PercentChange() float64 {
	return math.Round((r.GrowthFactor()-1)*100*1000) / 1000
}

// Result is the ranked output and the dates it compares.
type Result struct {
	Old  civil.Date
	New  civil.Date
	Rows []Row
}

// RankTrending computes the metric for every tag between two dates and
// returns the top rows, highest metric first. Rows whose metric is undefined
// are left out. Ties are broken by the newer count, descending, then by name.
func RankTrending(s Series, opts Options) (Result, error) {
	if opts.N < 0 {
		return Result{}, fmt.Errorf("invalid row limit %d", opts.N)
	}

	dates, err := s.Dates()
	if err != nil {
		return Result{}, fmt.Errorf("listing dates: %w", err)
	}
	if len(dates) == 0 {
		return Result{}, ErrNoSnapshots
	}

	oldDate, newDate, found := ResolveDates(dates, opts.Old, opts.New)
	result := Result{Old: oldDate, New: newDate}
	if !found {
		return result, nil
	}

	pivots, err := s.SnapshotBetween(oldDate, newDate)
	if err != nil {
		return Result{}, err
	}

	rows := make([]Row, 0, len(pivots))
	for _, p := range pivots {
		if !opts.matches(p.Tagname) {
			continue
		}
		if !p.New.Valid || p.New.Int64 <= opts.MinCount {
			continue
		}
		if !p.Old.Valid {
			continue
		}
		metric, ok := Metric(p.Old.Int64, p.New.Int64)
		if !ok {
			continue
		}
		rows = append(rows, Row{
			Tagname:  p.Tagname,
			OldCount: p.Old.Int64,
			NewCount: p.New.Int64,
			Metric:   metric,
		})
	}

	sortRows(rows)
	if opts.N > 0 && len(rows) > opts.N {
		rows = rows[:opts.N]
	}
	result.Rows = rows

	return result, nil
}

func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Metric != b.Metric {
			return a.Metric > b.Metric
		}
		if a.NewCount != b.NewCount {
			return a.NewCount > b.NewCount
		}
		return a.Tagname < b.Tagname
	})
}
