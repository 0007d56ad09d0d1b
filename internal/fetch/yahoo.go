package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"golang.org/x/time/rate"

	"github.com/stocklens/stocklens/internal/config"
	"github.com/stocklens/stocklens/internal/models"
)

const (
	rateLimitBurst    = 1
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
	retryMultiplier   = 2.0
	retryJitter       = 0.5
)

// YahooFetcher implements Fetcher against the Yahoo Finance chart API.
// Requests are rate-limited and retried with exponential backoff; the retry
// budget per request comes from the fetch configuration.
type YahooFetcher struct {
	limiter         *rate.Limiter
	maxRetryElapsed time.Duration
	logger          *slog.Logger
}

// NewYahooFetcher creates a Yahoo Finance fetcher.
func NewYahooFetcher(cfg config.FetchConfig, logger *slog.Logger) *YahooFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	return &YahooFetcher{
		limiter:         rate.NewLimiter(rate.Limit(rps), rateLimitBurst),
		maxRetryElapsed: time.Duration(cfg.MaxRetryElapsedMS) * time.Millisecond,
		logger:          logger.With("component", "yahoo_fetcher"),
	}
}

// Fetch implements Fetcher.Fetch. It requests daily bars for the range and
// converts them to price rows. Yahoo's second period bound is exclusive, so
// the end date is extended by one calendar day and the results are filtered
// back to the requested range.
func (f *YahooFetcher) Fetch(ctx context.Context, ticker string, rng models.DateRange) ([]models.PriceRow, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	f.logger.Debug("fetching daily bars", "ticker", ticker, "range", rng.String())

	start := rng.Start
	end := rng.End.AddDate(0, 0, 1)

	var bars []*finance.ChartBar
	operation := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		iter := chart.Get(&chart.Params{
			Symbol:   ticker,
			Interval: datetime.OneDay,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
		})
		var got []*finance.ChartBar
		for iter.Next() {
			got = append(got, iter.Bar())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("yahoo chart request for %s: %w", ticker, err)
		}
		bars = got
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(f.newBackOff(), ctx)); err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", ticker, rng.String(), err)
	}

	rows := make([]models.PriceRow, 0, len(bars))
	for _, bar := range bars {
		row, err := convertBar(ticker, bar)
		if err != nil {
			f.logger.Warn("skipping unusable bar", "ticker", ticker, "error", err)
			continue
		}
		if !rng.Contains(row.Date) {
			continue
		}
		rows = append(rows, *row)
	}

	f.logger.Debug("fetched daily bars", "ticker", ticker, "range", rng.String(), "rows", len(rows))
	return rows, nil
}

// ValidateTicker implements Fetcher.ValidateTicker with a lightweight quote
// lookup, mirroring the probe download done before any storage work.
func (f *YahooFetcher) ValidateTicker(ctx context.Context, ticker string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}

	q, err := equity.Get(ticker)
	if err != nil {
		return fmt.Errorf("ticker %q was not recognized by the provider: %w", ticker, err)
	}
	if q == nil {
		return fmt.Errorf("ticker %q was not recognized by the provider", ticker)
	}
	return nil
}

func (f *YahooFetcher) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialRetryDelay
	bo.MaxInterval = maxRetryDelay
	bo.Multiplier = retryMultiplier
	bo.RandomizationFactor = retryJitter
	bo.MaxElapsedTime = f.maxRetryElapsed
	return bo
}

// convertBar converts a provider bar into a price row. Prices stay decimal
// strings end to end; the bar timestamp collapses to its calendar date.
func convertBar(ticker string, bar *finance.ChartBar) (*models.PriceRow, error) {
	date := models.Day(time.Unix(int64(bar.Timestamp), 0))
	return models.NewPriceRow(
		ticker,
		date,
		bar.Open.String(),
		bar.High.String(),
		bar.Low.String(),
		bar.Close.String(),
		strconv.Itoa(bar.Volume),
	)
}
