package trend

import (
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
)

// Inspection is one tag's counts at two dates.
type Inspection struct {
	Tagname  string
	Old      civil.Date
	New      civil.Date
	OldCount sql.NullInt64
	NewCount sql.NullInt64

	Metric   float64
	MetricOK bool

	// GrowthFactor is NewCount / OldCount, set only when both counts exist
	// and OldCount is positive.
	GrowthFactor float64
	GrowthOK     bool
}

// Inspect reports a single tag's growth. Omitted (zero) dates default as in
// RankTrending, but only the dates on which this tag was observed are used.
func Inspect(s Series, tagname string, newDate, oldDate civil.Date) (*Inspection, error) {
	dates, err := s.DatesFor(tagname)
	if err != nil {
		return nil, fmt.Errorf("listing dates for %q: %w", tagname, err)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%q: %w", tagname, ErrNotFound)
	}

	explicitOld := !oldDate.IsZero()
	oldDate, newDate, found := ResolveDates(dates, oldDate, newDate)
	if !found && explicitOld {
		return nil, fmt.Errorf("%s is not before %s: %w", oldDate, newDate, ErrInsufficientHistory)
	}
	if !found {
		return nil, fmt.Errorf("%q has no observation before %s: %w", tagname, newDate, ErrInsufficientHistory)
	}

	in := &Inspection{Tagname: tagname, Old: oldDate, New: newDate}
	if in.OldCount, err = countAt(s, tagname, oldDate); err != nil {
		return nil, err
	}
	if in.NewCount, err = countAt(s, tagname, newDate); err != nil {
		return nil, err
	}

	if in.OldCount.Valid && in.NewCount.Valid {
		in.Metric, in.MetricOK = Metric(in.OldCount.Int64, in.NewCount.Int64)
		if in.OldCount.Int64 > 0 {
			in.GrowthFactor = float64(in.NewCount.Int64) / float64(in.OldCount.Int64)
			in.GrowthOK = true
		}
	}

	return in, nil
}

func countAt(s Series, tagname string, date civil.Date) (sql.NullInt64, error) {
	count, ok, err := s.CountAt(tagname, date)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: count, Valid: ok}, nil
}
