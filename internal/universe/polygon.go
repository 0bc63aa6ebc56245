package universe

import (
	"context"
	"log/slog"
)

// TickerLister lists active tickers of a market.
type TickerLister interface {
	ListTickers(ctx context.Context, market string) ([]string, error)
}

// PolygonReference lists active stocks from the Polygon reference API.
type PolygonReference struct {
	Lister TickerLister
}

// Tickers returns every active US stock.
func (p PolygonReference) Tickers(ctx context.Context) ([]string, error) {
	tickers, err := p.Lister.ListTickers(ctx, "stocks")
	if err != nil {
		return nil, err
	}
	out := normalize(tickers)
	slog.Info("loaded polygon reference tickers", "count", len(out))
	return out, nil
}
