package polygon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TickerInfo is one row of the reference tickers listing.
type TickerInfo struct {
	Ticker          string `json:"ticker"`
	Name            string `json:"name,omitempty"`
	Market          string `json:"market"`
	PrimaryExchange string `json:"primary_exchange,omitempty"`
	Type            string `json:"type,omitempty"`
	Active          bool   `json:"active"`
}

// TickersResponse is one page of /v3/reference/tickers.
type TickersResponse struct {
	Status    string       `json:"status"`
	RequestID string       `json:"request_id,omitempty"`
	Count     int          `json:"count"`
	Results   []TickerInfo `json:"results"`
	NextURL   string       `json:"next_url,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// ListTickers pages through the active tickers of market (e.g. "stocks") following next_url.
// Each page waits for a key like any other request.
func (c *Client) ListTickers(ctx context.Context, market string) ([]string, error) {
	var all []string
	seen := make(map[string]bool)

	next := "/v3/reference/tickers"
	query := map[string]string{"market": market, "active": "true", "limit": "1000", "order": "asc"}
	for page := 1; next != ""; page++ {
		result, err := c.tickersPage(ctx, next, query)
		if err != nil {
			return nil, fmt.Errorf("list tickers page %d: %w", page, err)
		}
		for _, t := range result.Results {
			if t.Market == market && t.Active && !seen[t.Ticker] {
				seen[t.Ticker] = true
				all = append(all, t.Ticker)
			}
		}
		slog.Debug("tickers page", "page", page, "batch", len(result.Results), "total", len(all))

		// next_url is absolute and already carries the cursor; only apiKey is re-added.
		next, query = result.NextURL, nil
	}
	return all, nil
}

func (c *Client) tickersPage(ctx context.Context, url string, query map[string]string) (*TickersResponse, error) {
	key, err := c.takeKey(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { c.keys <- key }()
	if err := key.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result TickersResponse
	req := c.rest.R().SetContext(ctx).SetQueryParam("apiKey", key.value).SetResult(&result)
	if query != nil {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}
	if !strings.EqualFold(result.Status, "OK") {
		return nil, fmt.Errorf("status %q %s", result.Status, result.Error)
	}
	return &result, nil
}
