package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"us-screener/internal/crawl"
	"us-screener/internal/model"
	"us-screener/internal/provider"
	"us-screener/internal/reconcile"
	"us-screener/internal/recorder"
	"us-screener/internal/report"
	"us-screener/internal/screener"
	"us-screener/internal/store"
	"us-screener/internal/universe"
)

// App wires the cache, the provider and the screener into the batch operations.
type App struct {
	Config     *Config
	Logger     *slog.Logger
	Store      *store.Store
	Provider   provider.DataProvider
	Universe   universe.Source
	Reconciler *reconcile.Reconciler
	Engine     *screener.Engine
	Recorder   recorder.Recorder
	Now        func() time.Time
}

// New creates an App (for Wire).
func New(cfg *Config, logger *slog.Logger, st *store.Store, dp provider.DataProvider, src universe.Source,
	rec *reconcile.Reconciler, engine *screener.Engine, runs recorder.Recorder) *App {
	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      st,
		Provider:   dp,
		Universe:   src,
		Reconciler: rec,
		Engine:     engine,
		Recorder:   runs,
		Now:        time.Now,
	}
}

// RunResult describes one batch run.
type RunResult struct {
	Kind      string
	Window    model.DateRange
	Tickers   int
	Skipped   int
	Succeeded int
	Failed    int
	Started   time.Time
	Finished  time.Time
	// Rows is the {Symbol, Type} table, sorted by symbol. Screening runs only.
	Rows    []model.ClassifiedTicker
	Signals []recorder.Signal
}

// Summary converts the result for terminal output.
func (r *RunResult) Summary() report.Summary {
	return report.Summary{
		Title:     r.Kind,
		Window:    r.Window,
		Tickers:   r.Tickers,
		Skipped:   r.Skipped,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Elapsed:   r.Finished.Sub(r.Started),
	}
}

func newRunResult[T any](kind string, b *crawl.Batch[T], skipped int) *RunResult {
	return &RunResult{
		Kind:      kind,
		Window:    b.Window,
		Tickers:   len(b.Outcomes),
		Skipped:   skipped,
		Succeeded: b.Succeeded,
		Failed:    b.Failed,
		Started:   b.Started,
		Finished:  b.Finished,
	}
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) window() model.DateRange {
	return model.LookbackWindow(a.now(), a.Config.LookbackDays)
}

func (a *App) crawlOptions() crawl.Options {
	return crawl.Options{
		Workers:        a.Config.Workers,
		Logger:         a.Logger,
		ClearRecovered: a.Config.ErrorTTL > 0,
		ReportDir:      a.Config.CacheDir(),
		Now:            a.now,
	}
}

// enumerate returns the tickers to run and the persisted error set.
// Without explicit tickers the universe is used minus the known-bad ones;
// explicit tickers are always attempted.
func (a *App) enumerate(ctx context.Context, tickers []string) ([]string, model.ErrorSet, int, error) {
	prior, err := a.Store.ErrorSet()
	if err != nil {
		return nil, nil, 0, err
	}
	if len(tickers) > 0 {
		list, _ := universe.Static(tickers).Tickers(ctx)
		return list, prior, 0, nil
	}

	all, err := a.Universe.Tickers(ctx)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("get tickers: %w", err)
	}
	keep, skipped := universe.Exclude(all, prior, a.now(), a.Config.ErrorTTL)
	a.Logger.Info("got tickers", "count", len(all), "skipped_error_set", skipped, "to_run", len(keep))
	return keep, prior, skipped, nil
}

func (a *App) saveErrorSet(errs model.ErrorSet, changed bool) error {
	if !changed {
		return nil
	}
	if err := a.Store.PutErrorSet(errs); err != nil {
		return err
	}
	a.Logger.Info("error set saved", "tickers", len(errs))
	return nil
}

// abort keeps the failures seen before cancellation; the partial run is neither stored nor recorded.
func (a *App) abort(ctx context.Context, res *RunResult, errs model.ErrorSet, changed bool) error {
	if err := a.saveErrorSet(errs, changed); err != nil {
		return err
	}
	a.Logger.Warn("run interrupted, results discarded", "kind", res.Kind, "succeeded", res.Succeeded, "failed", res.Failed)
	return fmt.Errorf("%s interrupted: %w", res.Kind, ctx.Err())
}

// finish persists the error set when it changed and records the run.
func (a *App) finish(res *RunResult, errs model.ErrorSet, changed bool) error {
	if err := a.saveErrorSet(errs, changed); err != nil {
		return err
	}
	run := &recorder.RunSummary{
		Kind:      res.Kind,
		Provider:  a.Provider.GetName(),
		Window:    res.Window.String(),
		Started:   res.Started,
		Finished:  res.Finished,
		Tickers:   res.Tickers,
		Skipped:   res.Skipped,
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Signals:   res.Signals,
	}
	if err := a.Recorder.RecordRun(run); err != nil {
		a.Logger.Warn("could not record run", "error", err)
	}
	return nil
}

// Populate brings the cached series of every ticker up to date over the lookback window.
func (a *App) Populate(ctx context.Context, tickers []string) (*RunResult, error) {
	list, prior, skipped, err := a.enumerate(ctx, tickers)
	if err != nil {
		return nil, err
	}
	batch := crawl.Run[model.Series](ctx, a.crawlOptions(), list, a.window(), prior, a.Reconciler.Fetch)
	res := newRunResult("populate", batch, skipped)
	if batch.Interrupted {
		return res, a.abort(ctx, res, batch.ErrorSet, batch.Changed)
	}
	return res, a.finish(res, batch.ErrorSet, batch.Changed)
}

// Screen reconciles and classifies every ticker and returns the overbought and oversold ones.
func (a *App) Screen(ctx context.Context, tickers []string) (*RunResult, error) {
	res, batch, err := a.screen(ctx, tickers)
	if err != nil {
		return nil, err
	}
	if batch.Interrupted {
		return res, a.abort(ctx, res, batch.ErrorSet, batch.Changed)
	}
	return res, a.finish(res, batch.ErrorSet, batch.Changed)
}

// ScreenAndStore screens and overwrites the filteredTicks table.
// An interrupted run leaves the stored table untouched.
func (a *App) ScreenAndStore(ctx context.Context, tickers []string) (*RunResult, error) {
	res, batch, err := a.screen(ctx, tickers)
	if err != nil {
		return nil, err
	}
	if batch.Interrupted {
		return res, a.abort(ctx, res, batch.ErrorSet, batch.Changed)
	}
	if err := a.Store.PutResult(store.FilteredTicks, res.Rows); err != nil {
		return res, err
	}
	a.Logger.Info("filtered ticks saved", "rows", len(res.Rows))
	return res, a.finish(res, batch.ErrorSet, batch.Changed)
}

func (a *App) screen(ctx context.Context, tickers []string) (*RunResult, *crawl.Batch[screener.Snapshot], error) {
	list, prior, skipped, err := a.enumerate(ctx, tickers)
	if err != nil {
		return nil, nil, err
	}
	batch := crawl.Run[screener.Snapshot](ctx, a.crawlOptions(), list, a.window(), prior, a.Engine.ClassifyTicker)

	res := newRunResult("screen", batch, skipped)
	res.Rows = []model.ClassifiedTicker{}
	for _, o := range batch.Successes() {
		snap := o.Value
		if snap.Classification == model.Neither {
			continue
		}
		res.Rows = append(res.Rows, model.ClassifiedTicker{Symbol: o.Ticker, Type: snap.Classification.String()})
		res.Signals = append(res.Signals, recorder.Signal{
			Symbol:   o.Ticker,
			Type:     snap.Classification.String(),
			Day:      snap.Day,
			AdjClose: snap.AdjClose,
			RSI:      snap.RSI,
			Upper:    snap.Upper,
			Lower:    snap.Lower,
		})
	}
	sort.Slice(res.Rows, func(i, j int) bool { return res.Rows[i].Symbol < res.Rows[j].Symbol })
	sort.Slice(res.Signals, func(i, j int) bool { return res.Signals[i].Symbol < res.Signals[j].Symbol })
	a.Logger.Info("screen done", "overbought_or_oversold", len(res.Rows))
	return res, batch, nil
}

// FilteredTicks reads the stored table, empty when no screening was stored yet.
func (a *App) FilteredTicks() ([]model.ClassifiedTicker, error) {
	return a.Store.Result(store.FilteredTicks)
}

// Errors reads the persisted error set.
func (a *App) Errors() (model.ErrorSet, error) {
	return a.Store.ErrorSet()
}

// ClearErrors removes tickers from the error set, or every ticker when none are given.
func (a *App) ClearErrors(tickers ...string) (int, error) {
	set, err := a.Store.ErrorSet()
	if err != nil {
		return 0, err
	}
	before := len(set)
	if len(tickers) == 0 {
		set = model.ErrorSet{}
	}
	for _, t := range tickers {
		set.Remove(t)
	}
	removed := before - len(set)
	if removed == 0 {
		return 0, nil
	}
	return removed, a.Store.PutErrorSet(set)
}
