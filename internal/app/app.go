// Package app wires the collaborators into the single-run pipeline:
// existing-data lookup, gap detection, range coalescing, per-range download,
// persistence, full read-back, and rendering.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stocklens/stocklens/internal/chart"
	"github.com/stocklens/stocklens/internal/fetch"
	"github.com/stocklens/stocklens/internal/gaps"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/storage"
)

// App orchestrates one collection-and-render run. All collaborators are
// injected; App owns no global state and never terminates the process.
// Failures propagate as errors to the caller.
type App struct {
	store     storage.PriceStore
	fetcher   fetch.Fetcher
	presenter chart.Presenter
	logger    *slog.Logger
}

// New creates an orchestrator from its collaborators.
func New(store storage.PriceStore, fetcher fetch.Fetcher, presenter chart.Presenter, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		store:     store,
		fetcher:   fetcher,
		presenter: presenter,
		logger:    logger,
	}
}

// Run executes one invocation for the ticker over the requested range.
// Missing sub-ranges are fetched and written strictly sequentially; the first
// collaborator failure aborts the run. On success the full range is read back
// from the store and handed to the presenter.
func (a *App) Run(ctx context.Context, ticker string, rng models.DateRange) error {
	log := a.logger.With(
		"component", "app",
		"run_id", uuid.NewString(),
		"ticker", ticker,
		"range", rng.String(),
	)
	log.Info("starting run")

	stored, err := a.store.ExistingDates(ctx, ticker, rng)
	if err != nil {
		return fmt.Errorf("failed to query existing dates: %w", err)
	}
	log.Debug("queried existing dates", "stored", len(stored))

	missing := gaps.FindMissingDates(rng, stored)
	if len(missing) == 0 {
		log.Debug("stored data already covers the requested range")
	}

	ranges := gaps.CoalesceRanges(missing)
	for _, sub := range ranges {
		log.Debug("downloading missing range", "missing_range", sub.String())

		rows, err := a.fetcher.Fetch(ctx, ticker, sub)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", sub.String(), err)
		}
		if err := a.store.WriteRows(ctx, rows); err != nil {
			return fmt.Errorf("failed to store rows for %s: %w", sub.String(), err)
		}
		log.Debug("stored downloaded rows", "missing_range", sub.String(), "rows", len(rows))
	}

	rows, err := a.store.ReadRows(ctx, ticker, rng)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	if err := a.presenter.Render(rows); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	log.Info("run completed", "rows", len(rows), "ranges_fetched", len(ranges))
	return nil
}
