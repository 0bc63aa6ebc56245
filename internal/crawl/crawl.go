// Package crawl runs one per-ticker job over a batch of tickers with a bounded worker pool.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"us-screener/internal/model"
)

// DefaultWorkers is the pool size when Options.Workers is not set.
const DefaultWorkers = 8

// Job fetches or computes one ticker's result over the shared window.
type Job[T any] func(ctx context.Context, ticker string, window model.DateRange) (T, error)

// Outcome is what a worker sends back for one ticker.
type Outcome[T any] struct {
	Ticker  string
	Value   T
	Err     error
	Elapsed time.Duration
}

// Ok reports whether the job succeeded.
func (o Outcome[T]) Ok() bool { return o.Err == nil }

// Options tunes a run.
type Options struct {
	Workers           int
	Logger            *slog.Logger
	HeartbeatInterval time.Duration
	// ClearRecovered removes tickers that succeed this run from the error set.
	ClearRecovered bool
	// ReportDir receives .lastrun.success.json and .lastrun.failed.json when set.
	ReportDir string
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Batch is the folded result of a run.
type Batch[T any] struct {
	Window model.DateRange
	// Outcomes holds exactly one entry per input ticker, in completion order.
	Outcomes  []Outcome[T]
	Succeeded int
	Failed    int
	// ErrorSet is the prior set plus this run's failures.
	ErrorSet model.ErrorSet
	// Changed reports whether ErrorSet differs from the prior set.
	Changed bool
	// Interrupted is set when ctx was done by the time the last job returned.
	// Outcomes are then partial and recoveries are not folded into ErrorSet.
	Interrupted bool
	Started     time.Time
	Finished    time.Time
}

// Successes returns the successful outcomes.
func (b *Batch[T]) Successes() []Outcome[T] {
	out := make([]Outcome[T], 0, b.Succeeded)
	for _, o := range b.Outcomes {
		if o.Ok() {
			out = append(out, o)
		}
	}
	return out
}

// Failures returns the failed outcomes.
func (b *Batch[T]) Failures() []Outcome[T] {
	out := make([]Outcome[T], 0, b.Failed)
	for _, o := range b.Outcomes {
		if !o.Ok() {
			out = append(out, o)
		}
	}
	return out
}

// Run executes job for every ticker with at most opts.Workers in flight and waits for all of them.
// A failing or panicking job affects only its own outcome. Workers never touch the error set:
// outcomes are folded by the calling goroutine.
func Run[T any](ctx context.Context, opts Options, tickers []string, window model.DateRange, prior model.ErrorSet, job Job[T]) *Batch[T] {
	opts = opts.withDefaults()
	logger := opts.Logger

	started := opts.Now().UTC()
	batch := &Batch[T]{
		Window:   window,
		Outcomes: make([]Outcome[T], 0, len(tickers)),
		ErrorSet: prior.Clone(),
		Started:  started,
	}
	logger.Info("batch start", "tickers", len(tickers), "workers", opts.Workers, "date_range", window.String())

	results := make(chan Outcome[T], opts.Workers)
	go func() {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for _, t := range tickers {
			g.Go(func() error {
				results <- runOne(ctx, t, window, job)
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	var recovered []string
	c := newCollector(len(tickers))
	heartbeat := time.NewTicker(opts.HeartbeatInterval)
	defer heartbeat.Stop()
	for done := false; !done; {
		select {
		case o, ok := <-results:
			if !ok {
				done = true
				break
			}
			c.add(o.Ok())
			batch.Outcomes = append(batch.Outcomes, o)
			if o.Ok() {
				batch.Succeeded++
				logger.Debug("job ok", "ticker", o.Ticker, "elapsed", o.Elapsed)
				if opts.ClearRecovered {
					recovered = append(recovered, o.Ticker)
				}
				continue
			}
			batch.Failed++
			logger.Warn("job fail", "ticker", o.Ticker, "date_range", window.String(), "reason", o.Err)
			// An interrupted run says nothing about the ticker.
			if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
				continue
			}
			batch.ErrorSet.Add(o.Ticker, started)
		case <-heartbeat.C:
			c.log(logger)
		}
	}

	batch.Finished = opts.Now().UTC()
	batch.Interrupted = ctx.Err() != nil
	if !batch.Interrupted {
		for _, t := range recovered {
			batch.ErrorSet.Remove(t)
		}
	}
	batch.Changed = !batch.ErrorSet.Equal(prior)
	logger.Info("batch done", "success", batch.Succeeded, "failed", batch.Failed,
		"error_set", len(batch.ErrorSet), "interrupted", batch.Interrupted, "elapsed", batch.Finished.Sub(started).Round(time.Millisecond))
	if batch.Failed > 0 {
		logger.Info("summary failed", "count", batch.Failed, "reasons", joinFailedReasons(failedEntries(batch)))
	}
	if opts.ReportDir != "" {
		if err := writeRunReport(opts.ReportDir, successList(batch), failedEntries(batch)); err != nil {
			logger.Warn("could not write run report", "error", err)
		}
	}
	return batch
}

// runOne runs job for one ticker, turning a panic into a failed outcome.
func runOne[T any](ctx context.Context, ticker string, window model.DateRange, job Job[T]) (o Outcome[T]) {
	start := time.Now()
	o.Ticker = ticker
	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("panic: %v", r)
		}
		o.Elapsed = time.Since(start)
	}()
	o.Value, o.Err = job(ctx, ticker, window)
	return o
}
