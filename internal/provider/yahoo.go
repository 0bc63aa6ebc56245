package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"us-screener/internal/model"
)

// chartFunc runs one chart query and drains the iterator.
type chartFunc func(p *chart.Params) ([]*finance.ChartBar, error)

// YahooProvider is a DataProvider backed by the Yahoo Finance chart API.
type YahooProvider struct {
	limiter *rate.Limiter
	chart   chartFunc
}

// NewYahooProvider creates a Yahoo provider allowing rps chart requests per second across all workers.
func NewYahooProvider(rps float64) *YahooProvider {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &YahooProvider{
		limiter: rate.NewLimiter(limit, 1),
		chart:   getChart,
	}
}

func getChart(p *chart.Params) ([]*finance.ChartBar, error) {
	iter := chart.Get(p)
	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

// GetName returns provider name
func (y *YahooProvider) GetName() string { return "Yahoo" }

// Close is a no-op; the chart client holds no connections of its own.
func (y *YahooProvider) Close() error { return nil }

// yahooSymbol maps directory notation to Yahoo's: class shares use '-', preferreds '-P'.
func yahooSymbol(ticker string) string {
	s := strings.ReplaceAll(ticker, ".", "-")
	return strings.ReplaceAll(s, "$", "-P")
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// FetchDaily fetches daily bars for the inclusive range.
func (y *YahooProvider) FetchDaily(ctx context.Context, ticker string, r model.DateRange) (model.Series, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, ErrNoData)
	}
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := r.From
	end := r.To.AddDate(0, 0, 1) // chart end is exclusive
	raw, err := y.chart(&chart.Params{
		Symbol:   yahooSymbol(ticker),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s %s: %w", ticker, r, err)
	}

	series := make(model.Series, 0, len(raw))
	for _, b := range raw {
		if b == nil {
			continue
		}
		day := model.Day(time.Unix(int64(b.Timestamp), 0))
		if !r.Contains(day) {
			continue
		}
		series = append(series, model.NewBar(day,
			toFloat(b.Open), toFloat(b.High), toFloat(b.Low), toFloat(b.Close), toFloat(b.AdjClose),
			int64(b.Volume)))
	}
	series = series.Normalize()
	if len(series) == 0 {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, ErrNoData)
	}
	return series, nil
}
