// Package providertest is an in-memory DataProvider for tests.
package providertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"us-screener/internal/model"
	"us-screener/internal/provider"
)

// Call is one recorded FetchDaily invocation.
type Call struct {
	Ticker string
	Range  model.DateRange
}

// Provider serves a deterministic bar for every weekday in the requested range.
// AdjClose for a day is derived from the ticker and the date, so repeated fetches agree.
type Provider struct {
	mu    sync.Mutex
	calls []Call

	// Fail makes every fetch for the ticker fail.
	Fail map[string]error
	// FailRange makes fetches fail when the requested range starts on the given day.
	FailRange map[string]time.Time
	// Empty makes the ticker have no data at all.
	Empty map[string]bool
	// Panic makes fetches for the ticker panic.
	Panic map[string]bool
	// Closes overrides generated prices: ticker -> adj closes for consecutive weekdays from the range start.
	Closes map[string][]float64
	// Delay is slept before each fetch returns.
	Delay time.Duration
}

// New returns an empty Provider.
func New() *Provider {
	return &Provider{
		Fail:      map[string]error{},
		FailRange: map[string]time.Time{},
		Empty:     map[string]bool{},
		Panic:     map[string]bool{},
		Closes:    map[string][]float64{},
	}
}

func (p *Provider) GetName() string { return "test" }

func (p *Provider) Close() error { return nil }

// Calls returns a copy of the recorded calls in arrival order.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallsFor returns the recorded calls for one ticker.
func (p *Provider) CallsFor(ticker string) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if c.Ticker == ticker {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets the recorded calls.
func (p *Provider) Reset() {
	p.mu.Lock()
	p.calls = nil
	p.mu.Unlock()
}

// FetchDaily implements provider.DataProvider.
func (p *Provider) FetchDaily(ctx context.Context, ticker string, r model.DateRange) (model.Series, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{Ticker: ticker, Range: r})
	failErr := p.Fail[ticker]
	failDay, failRange := p.FailRange[ticker]
	empty := p.Empty[ticker]
	panics := p.Panic[ticker]
	closes := p.Closes[ticker]
	p.mu.Unlock()

	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if panics {
		panic("providertest: panic for " + ticker)
	}
	if failErr != nil {
		return nil, failErr
	}
	if failRange && failDay.Equal(r.From) {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, provider.ErrNoData)
	}
	if empty || r.Empty() {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, provider.ErrNoData)
	}

	var series model.Series
	i := 0
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		adj := Price(ticker, d)
		if closes != nil {
			if i >= len(closes) {
				break
			}
			adj = closes[i]
		}
		i++
		series = append(series, model.NewBar(d, adj, adj+1, adj-1, adj, adj, 1000))
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, provider.ErrNoData)
	}
	return series, nil
}

// Price is the generated adjusted close of ticker on day.
func Price(ticker string, day time.Time) float64 {
	var h int
	for _, c := range ticker {
		h = h*31 + int(c)
	}
	return float64(100+h%50) + float64(day.YearDay()%17)
}

var _ provider.DataProvider = (*Provider)(nil)
