// Package reconcile keeps a ticker's cached series covering a requested window,
// fetching only the days missing at either end.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"us-screener/internal/model"
	"us-screener/internal/provider"
)

// ErrEmptyWindow is returned for a window whose start is after its end.
var ErrEmptyWindow = errors.New("empty date window")

// SeriesStore is the part of the cache the reconciler needs.
type SeriesStore interface {
	Get(ticker string) (model.Series, bool, error)
	Put(ticker string, series model.Series) error
}

// Reconciler merges cached series with provider data.
type Reconciler struct {
	Store    SeriesStore
	Provider provider.DataProvider
	Logger   *slog.Logger
}

// New creates a Reconciler.
func New(store SeriesStore, dp provider.DataProvider, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{Store: store, Provider: dp, Logger: logger}
}

// Fetch returns the series of ticker from window.From onwards, extended to cover window where
// the provider has data. The result may run past window.To when the cache already held later days.
//
// A failed gap fetch leaves that gap unfilled. Fetch fails only when there is no usable cache and
// the full fetch fails, or when the cache cannot be read or written.
func (r *Reconciler) Fetch(ctx context.Context, ticker string, window model.DateRange) (model.Series, error) {
	if window.Empty() {
		return nil, fmt.Errorf("%s %s: %w", ticker, window, ErrEmptyWindow)
	}

	cached, ok, err := r.Store.Get(ticker)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.fetchFull(ctx, ticker, window, nil)
	}

	cached = cached.Normalize()
	trimmed := cached.Since(window.From)
	if len(trimmed) == 0 {
		return r.fetchFull(ctx, ticker, window, cached)
	}

	merged := trimmed
	if firstGapEnd := trimmed.FirstDay().AddDate(0, 0, -1); !firstGapEnd.Before(window.From) {
		gap := model.NewDateRange(window.From, firstGapEnd)
		if lead, err := r.fetch(ctx, ticker, gap); err != nil {
			r.Logger.Debug("leading gap unfilled", "ticker", ticker, "date_range", gap.String(), "reason", err)
		} else {
			merged = merged.CombineFirst(lead.Until(firstGapEnd))
		}
	}
	if lastGapStart := trimmed.LastDay().AddDate(0, 0, 1); !lastGapStart.After(window.To) {
		gap := model.NewDateRange(lastGapStart, window.To)
		if trail, err := r.fetch(ctx, ticker, gap); err != nil {
			r.Logger.Debug("trailing gap unfilled", "ticker", ticker, "date_range", gap.String(), "reason", err)
		} else {
			merged = merged.CombineFirst(trail.Since(lastGapStart))
		}
	}

	if added := len(merged) - len(trimmed); added > 0 {
		// Rows older than the window stay on disk; the cache only grows.
		if err := r.Store.Put(ticker, cached.CombineFirst(merged)); err != nil {
			return nil, err
		}
		r.Logger.Debug("cache extended", "ticker", ticker, "added", added, "bars", len(merged))
	}
	return merged, nil
}

// fetchFull fetches the whole window and stores it beside whatever older rows were cached.
func (r *Reconciler) fetchFull(ctx context.Context, ticker string, window model.DateRange, older model.Series) (model.Series, error) {
	series, err := r.fetch(ctx, ticker, window)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Put(ticker, older.CombineFirst(series)); err != nil {
		return nil, err
	}
	return series, nil
}

// fetch calls the provider, treating an empty result as provider.ErrNoData.
func (r *Reconciler) fetch(ctx context.Context, ticker string, window model.DateRange) (model.Series, error) {
	start := time.Now()
	series, err := r.Provider.FetchDaily(ctx, ticker, window)
	if err != nil {
		return nil, err
	}
	series = series.Normalize()
	if len(series) == 0 {
		return nil, fmt.Errorf("%s %s: %w", ticker, window, provider.ErrNoData)
	}
	r.Logger.Debug("fetched", "ticker", ticker, "date_range", window.String(), "bars", len(series), "elapsed", time.Since(start))
	return series, nil
}
