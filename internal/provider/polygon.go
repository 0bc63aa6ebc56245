package provider

import (
	"context"
	"fmt"

	"us-screener/internal/model"
	"us-screener/internal/provider/polygon"
)

// PolygonProvider is a DataProvider backed by Polygon daily aggregates.
// It embeds *polygon.Client to expose the key pool and request helpers.
type PolygonProvider struct {
	*polygon.Client
}

// NewPolygonProvider creates a Polygon-backed DataProvider that rotates over apiKeys.
func NewPolygonProvider(apiKeys []string) (*PolygonProvider, error) {
	client, err := polygon.NewClient(polygon.BaseURL, apiKeys, polygon.KeyCooldown)
	if err != nil {
		return nil, err
	}
	return &PolygonProvider{Client: client}, nil
}

// GetName returns provider name
func (p *PolygonProvider) GetName() string {
	return "Polygon"
}

// FetchDaily fetches adjusted daily bars; Polygon's adjusted close doubles as AdjClose.
func (p *PolygonProvider) FetchDaily(ctx context.Context, ticker string, r model.DateRange) (model.Series, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, ErrNoData)
	}
	bars, err := p.Client.DailyBars(ctx, ticker, r.From, r.To)
	if err != nil {
		return nil, err
	}
	series := model.Series(bars).Normalize()
	if len(series) == 0 {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, ErrNoData)
	}
	return series, nil
}
