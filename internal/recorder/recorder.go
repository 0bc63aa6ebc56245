package recorder

import "time"

// Signal is one classified ticker of a run.
type Signal struct {
	Symbol   string
	Type     string
	Day      time.Time
	AdjClose float64
	RSI      float64
	Upper    float64
	Lower    float64
}

// RunSummary holds what a batch run did.
type RunSummary struct {
	ID        int64
	Kind      string // "populate" or "screen"
	Provider  string
	Window    string
	Started   time.Time
	Finished  time.Time
	Tickers   int
	Skipped   int
	Succeeded int
	Failed    int
	Signals   []Signal
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(run *RunSummary) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
