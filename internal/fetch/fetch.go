// Package fetch downloads the published daily tag count files.
package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/avast/retry-go"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/ademuri/tag-trends/internal/logging"
)

const DefaultURLTemplate = "https://github.com/mokurin000/e-hentai-tag-count/releases/download/v{yyyy}.{mm}.{dd}/tagname_count.csv.gz"

// ErrMissingSnapshot means no snapshot could be retrieved for a date, either
// because none was published or because the download failed.
var ErrMissingSnapshot = errors.New("missing snapshot")

type Config struct {
	// URLTemplate may contain {yyyy}, {mm} and {dd}.
	URLTemplate string

	Timeout time.Duration

	// Workers bounds the number of concurrent downloads in FetchAll.
	Workers int

	// RetryMax is the number of HTTP retries on 5xx, 429 and connection errors.
	RetryMax int

	// DecodeAttempts is the number of times a body that fails to gunzip is
	// downloaded again.
	DecodeAttempts uint

	// RequestsPerSecond paces requests across all workers. Zero disables pacing.
	RequestsPerSecond float64
}

func DefaultConfig() Config {
	return Config{
		URLTemplate:       DefaultURLTemplate,
		Timeout:           30 * time.Second,
		Workers:           3,
		RetryMax:          3,
		DecodeAttempts:    3,
		RequestsPerSecond: 2,
	}
}

type Fetcher struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

func New(config Config, log zerolog.Logger) *Fetcher {
	if config.URLTemplate == "" {
		config.URLTemplate = DefaultURLTemplate
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.DecodeAttempts < 1 {
		config.DecodeAttempts = 1
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = config.RetryMax
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.HTTPClient.Timeout = config.Timeout
	retryClient.Logger = logging.RetryLogger{Log: log}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &Fetcher{
		config:  config,
		client:  retryClient.StandardClient(),
		limiter: rate.NewLimiter(limit, config.Workers),
		log:     log,
	}
}

// URL returns the download location of the snapshot for date.
func (f *Fetcher) URL(date civil.Date) string {
	return strings.NewReplacer(
		"{yyyy}", fmt.Sprintf("%04d", date.Year),
		"{mm}", fmt.Sprintf("%02d", int(date.Month)),
		"{dd}", fmt.Sprintf("%02d", date.Day),
	).Replace(f.config.URLTemplate)
}

// decodeError marks a download whose body could not be read or gunzipped,
// which usually means it was truncated and is worth fetching again.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// Fetch downloads and decompresses the snapshot for date. Any failure other
// than cancellation of ctx is reported as ErrMissingSnapshot.
func (f *Fetcher) Fetch(ctx context.Context, date civil.Date) ([]byte, error) {
	url := f.URL(date)

	var data []byte
	err := retry.Do(
		func() error {
			var err error
			data, err = f.download(ctx, url)
			return err
		},
		retry.Attempts(f.config.DecodeAttempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			var decodeErr *decodeError
			if errors.As(err, &decodeErr) {
				f.log.Warn().Err(err).Str("url", url).Msg("Corrupt download, retrying")
				return true
			}
			return false
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrMissingSnapshot) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingSnapshot, date, err)
	}

	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrMissingSnapshot, url, resp.StatusCode)
	}

	compressed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &decodeError{fmt.Errorf("reading %s: %w", url, err)}
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &decodeError{fmt.Errorf("decompressing %s: %w", url, err)}
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, &decodeError{fmt.Errorf("decompressing %s: %w", url, err)}
	}
	return data, nil
}

// Result is the outcome of fetching one date.
type Result struct {
	Date civil.Date
	Data []byte
	Err  error
}

// FetchAll downloads every date with at most Config.Workers downloads in
// flight. Results are returned in the order of dates. onDone, if set, is
// called from the worker goroutines as each date finishes.
func (f *Fetcher) FetchAll(ctx context.Context, dates []civil.Date, onDone func(Result)) []Result {
	results := make([]Result, len(dates))
	p := pool.New().WithMaxGoroutines(f.config.Workers)

	for i, date := range dates {
		p.Go(func() {
			data, err := f.Fetch(ctx, date)
			results[i] = Result{Date: date, Data: data, Err: err}
			if err != nil {
				f.log.Debug().Err(err).Stringer("date", date).Msg("Fetch failed")
			} else {
				f.log.Debug().Stringer("date", date).Int("bytes", len(data)).Msg("Fetched snapshot")
			}
			if onDone != nil {
				onDone(results[i])
			}
		})
	}
	p.Wait()

	return results
}
