package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"us-screener/internal/model"
	"us-screener/internal/provider/providertest"
	"us-screener/internal/reconcile"
	"us-screener/internal/recorder"
	"us-screener/internal/saver"
	"us-screener/internal/screener"
	"us-screener/internal/store"
	"us-screener/internal/universe"
)

var testNow = time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, dp *providertest.Provider, tickers ...string) *App {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.SaveFormat = string(saver.JSON)
	cfg.Workers = 3
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := store.New(cfg.CacheDir(), cfg.Format())
	rec := reconcile.New(st, dp, logger)
	a := New(cfg, logger, st, dp, universe.Static(tickers), rec, screener.NewEngine(rec, cfg.Screener), recorder.NewNoopRecorder())
	a.Now = func() time.Time { return testNow }
	return a
}

func repeat(n int, v, last float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	out[n-1] = last
	return out
}

func TestPopulateRecordsAndSkipsFailures(t *testing.T) {
	dp := providertest.New()
	dp.Empty["BAD"] = true
	a := newTestApp(t, dp, "AAPL", "BAD", "MSFT")

	res, err := a.Populate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if res.Tickers != 3 || res.Succeeded != 2 || res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
	if _, ok, _ := a.Store.Get("AAPL"); !ok {
		t.Error("AAPL not cached")
	}
	errs, _ := a.Errors()
	if !errs.Has("BAD") {
		t.Fatalf("error set = %v", errs.Tickers())
	}

	dp.Reset()
	res, err = a.Populate(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 || res.Tickers != 2 {
		t.Errorf("second run = %+v", res)
	}
	if calls := dp.CallsFor("BAD"); len(calls) != 0 {
		t.Errorf("BAD retried: %+v", calls)
	}
}

func TestErrorTTLRetriesAndClears(t *testing.T) {
	dp := providertest.New()
	a := newTestApp(t, dp, "AAPL", "BAD")
	a.Config.ErrorTTL = 24 * time.Hour
	old := model.ErrorSet{}
	old.Add("BAD", testNow.Add(-48*time.Hour))
	a.Store.PutErrorSet(old)

	res, err := a.Populate(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 0 || res.Succeeded != 2 {
		t.Errorf("result = %+v", res)
	}
	errs, _ := a.Errors()
	if len(errs) != 0 {
		t.Errorf("error set = %v, want recovered ticker removed", errs.Tickers())
	}
}

func TestScreenAndStore(t *testing.T) {
	dp := providertest.New()
	dp.Closes["UP"] = repeat(40, 10, 30)
	dp.Closes["DOWN"] = repeat(40, 10, 1)
	zig := make([]float64, 40)
	for i := range zig {
		zig[i] = 10 + float64(i%2)
	}
	dp.Closes["ZIG"] = zig
	dp.Empty["GONE"] = true
	a := newTestApp(t, dp, "ZIG", "UP", "GONE", "DOWN")

	before, err := a.FilteredTicks()
	if err != nil || len(before) != 0 {
		t.Fatalf("before: %v, %v", before, err)
	}

	res, err := a.ScreenAndStore(context.Background(), nil)
	if err != nil {
		t.Fatalf("ScreenAndStore: %v", err)
	}
	want := []model.ClassifiedTicker{
		{Symbol: "DOWN", Type: "Oversold"},
		{Symbol: "UP", Type: "Overbought"},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %+v, want %+v", res.Rows, want)
	}
	if res.Failed != 1 || len(res.Signals) != 2 {
		t.Errorf("result = %+v", res)
	}

	stored, err := a.FilteredTicks()
	if err != nil || !reflect.DeepEqual(stored, want) {
		t.Errorf("stored = %+v, %v", stored, err)
	}
	errs, _ := a.Errors()
	if !errs.Has("GONE") {
		t.Errorf("error set = %v", errs.Tickers())
	}
}

type countingRecorder struct {
	recorder.NoopRecorder
	runs int
}

func (r *countingRecorder) RecordRun(*recorder.RunSummary) error {
	r.runs++
	return nil
}

func TestScreenAndStoreInterruptedKeepsStoredTable(t *testing.T) {
	dp := providertest.New()
	dp.Delay = time.Minute
	a := newTestApp(t, dp, "UP", "DOWN", "OLD")
	runs := &countingRecorder{}
	a.Recorder = runs
	a.Config.ErrorTTL = 24 * time.Hour

	good := []model.ClassifiedTicker{{Symbol: "UP", Type: "Overbought"}}
	if err := a.Store.PutResult(store.FilteredTicks, good); err != nil {
		t.Fatal(err)
	}
	prior := model.ErrorSet{}
	prior.Add("OLD", testNow.Add(-48*time.Hour))
	a.Store.PutErrorSet(prior)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := a.ScreenAndStore(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res == nil || res.Failed != 3 {
		t.Errorf("result = %+v", res)
	}

	stored, err := a.FilteredTicks()
	if err != nil || !reflect.DeepEqual(stored, good) {
		t.Errorf("stored = %+v, %v, want previous table kept", stored, err)
	}
	if runs.runs != 0 {
		t.Errorf("interrupted run recorded %d times", runs.runs)
	}
	errs, _ := a.Errors()
	if !errs.Equal(prior) {
		t.Errorf("error set = %v, want %v", errs.Tickers(), prior.Tickers())
	}
}

func TestPopulateInterrupted(t *testing.T) {
	dp := providertest.New()
	dp.Delay = time.Minute
	a := newTestApp(t, dp, "AAPL")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Populate(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errs, _ := a.Errors(); len(errs) != 0 {
		t.Errorf("error set = %v", errs.Tickers())
	}
}

func TestScreenExplicitTickersIgnoreErrorSet(t *testing.T) {
	dp := providertest.New()
	a := newTestApp(t, dp)
	set := model.ErrorSet{}
	set.Add("AAPL", testNow)
	a.Store.PutErrorSet(set)

	res, err := a.Screen(context.Background(), []string{"aapl"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Tickers != 1 || res.Succeeded != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(dp.CallsFor("AAPL")) != 1 {
		t.Errorf("calls = %+v", dp.Calls())
	}
}

func TestClearErrors(t *testing.T) {
	a := newTestApp(t, providertest.New())
	set := model.ErrorSet{}
	set.Add("A", testNow)
	set.Add("B", testNow)
	set.Add("C", testNow)
	a.Store.PutErrorSet(set)

	n, err := a.ClearErrors("B", "ZZZ")
	if err != nil || n != 1 {
		t.Fatalf("ClearErrors(B) = %d, %v", n, err)
	}
	n, err = a.ClearErrors()
	if err != nil || n != 2 {
		t.Fatalf("ClearErrors() = %d, %v", n, err)
	}
	errs, _ := a.Errors()
	if len(errs) != 0 {
		t.Errorf("error set = %v", errs.Tickers())
	}
}
