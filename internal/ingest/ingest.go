// Package ingest turns downloaded daily snapshots into time series entries.
//
// Downloads run in parallel inside the fetcher. Parsing, normalization and
// storage happen here one date at a time, in date order.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/ademuri/tag-trends/internal/fetch"
	"github.com/ademuri/tag-trends/internal/tags"
)

// ErrNoData means not a single requested date could be loaded.
var ErrNoData = errors.New("no data was successfully loaded")

type Fetcher interface {
	FetchAll(ctx context.Context, dates []civil.Date, onDone func(fetch.Result)) []fetch.Result
}

type Store interface {
	Ingest(date civil.Date, snapshot tags.Snapshot) error
}

type Driver struct {
	Fetcher Fetcher
	Store   Store
	Mapping tags.Mapping
	Log     zerolog.Logger

	// OnFetched is called from fetch workers as each date's download finishes.
	OnFetched func(fetch.Result)
}

// Failure is a date whose snapshot was downloaded but could not be parsed.
type Failure struct {
	Date civil.Date
	Err  error
}

type Summary struct {
	Ingested []civil.Date
	Missing  []civil.Date
	Failed   []Failure
	Tags     int
}

// Run fetches and ingests dates. Missing or malformed snapshots are skipped
// and reported in the summary. A storage error stops the run; dates ingested
// before it are kept.
func (d *Driver) Run(ctx context.Context, dates []civil.Date) (Summary, error) {
	var summary Summary
	if len(dates) == 0 {
		return summary, nil
	}

	results := d.Fetcher.FetchAll(ctx, dates, d.OnFetched)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Date.Before(results[j].Date)
	})

	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if result.Err != nil {
			if !errors.Is(result.Err, fetch.ErrMissingSnapshot) {
				return summary, fmt.Errorf("fetching %s: %w", result.Date, result.Err)
			}
			d.Log.Warn().Stringer("date", result.Date).Err(result.Err).Msg("Skipping missing snapshot")
			summary.Missing = append(summary.Missing, result.Date)
			continue
		}

		raw, err := tags.ParseSnapshot(bytes.NewReader(result.Data))
		if err != nil {
			d.Log.Error().Stringer("date", result.Date).Err(err).Msg("Skipping malformed snapshot")
			summary.Failed = append(summary.Failed, Failure{Date: result.Date, Err: err})
			continue
		}

		normalized := tags.Normalize(raw, d.Mapping)
		if err := d.Store.Ingest(result.Date, normalized); err != nil {
			return summary, fmt.Errorf("ingesting %s: %w", result.Date, err)
		}

		d.Log.Info().
			Stringer("date", result.Date).
			Int("raw_tags", len(raw)).
			Int("tags", len(normalized)).
			Msg("Ingested snapshot")
		summary.Ingested = append(summary.Ingested, result.Date)
		summary.Tags += len(normalized)
	}

	if len(summary.Ingested) == 0 {
		return summary, ErrNoData
	}
	return summary, nil
}
