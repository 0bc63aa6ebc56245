// Package screener flags tickers whose latest row is overbought or oversold by RSI and Bollinger Bands.
package screener

import (
	"context"
	"time"

	"us-screener/internal/indicator"
	"us-screener/internal/model"
)

// Params are the indicator settings and thresholds.
type Params struct {
	RSIPeriod  int     `yaml:"rsi_period"`
	RSIUpper   float64 `yaml:"rsi_upper"`
	RSILower   float64 `yaml:"rsi_lower"`
	BandPeriod int     `yaml:"band_period"`
	BandWidth  float64 `yaml:"band_width"`
}

// DefaultParams: RSI 14 with 75/25 thresholds, Bollinger 20 periods at 2 deviations.
func DefaultParams() Params {
	return Params{RSIPeriod: 14, RSIUpper: 75, RSILower: 25, BandPeriod: 20, BandWidth: 2}
}

// Classify applies the rule to the latest row. A NaN RSI never matches.
func (p Params) Classify(rsi float64, aboveUpper, belowLower bool) model.Classification {
	switch {
	case rsi >= p.RSIUpper && aboveUpper:
		return model.Overbought
	case rsi <= p.RSILower && belowLower:
		return model.Oversold
	default:
		return model.Neither
	}
}

// Snapshot is the latest row with its indicator values.
type Snapshot struct {
	Day            time.Time
	AdjClose       float64
	RSI            float64
	Middle         float64
	Upper          float64
	Lower          float64
	AboveUpper     bool
	BelowLower     bool
	Classification model.Classification
}

// Evaluate computes the indicators over the adjusted closes and classifies the last row.
// An empty series evaluates to Neither.
func (p Params) Evaluate(series model.Series) (Snapshot, error) {
	if len(series) == 0 {
		return Snapshot{Classification: model.Neither}, nil
	}
	closes := series.AdjCloses()
	rsi, err := indicator.RSI(closes, p.RSIPeriod)
	if err != nil {
		return Snapshot{}, err
	}
	bands, err := indicator.Bollinger(closes, p.BandPeriod, p.BandWidth)
	if err != nil {
		return Snapshot{}, err
	}
	last := len(closes) - 1
	s := Snapshot{
		Day:        series.LastDay(),
		AdjClose:   closes[last],
		RSI:        rsi[last],
		Middle:     bands.Middle[last],
		Upper:      bands.Upper[last],
		Lower:      bands.Lower[last],
		AboveUpper: bands.AboveUpper(closes)[last],
		BelowLower: bands.BelowLower(closes)[last],
	}
	s.Classification = p.Classify(s.RSI, s.AboveUpper, s.BelowLower)
	return s, nil
}

// Fetcher returns an up-to-date series for a ticker.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, window model.DateRange) (model.Series, error)
}

// Engine classifies tickers on freshly reconciled series.
type Engine struct {
	Fetcher Fetcher
	Params  Params
}

// NewEngine creates an Engine.
func NewEngine(f Fetcher, p Params) *Engine {
	return &Engine{Fetcher: f, Params: p}
}

// ClassifyTicker reconciles the ticker's series over window and evaluates it.
// A fetch failure is returned so the batch records it.
func (e *Engine) ClassifyTicker(ctx context.Context, ticker string, window model.DateRange) (Snapshot, error) {
	series, err := e.Fetcher.Fetch(ctx, ticker, window)
	if err != nil {
		return Snapshot{}, err
	}
	return e.Params.Evaluate(series)
}
