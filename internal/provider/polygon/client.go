package polygon

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"us-screener/internal/model"
)

const (
	// BaseURL is the public Polygon REST endpoint.
	BaseURL = "https://api.polygon.io"

	// KeyCooldown: Polygon free tier allows 5 req/min => one request per 12s per key
	KeyCooldown = 12 * time.Second

	// Max results per aggregates request; a year of daily bars is far below this.
	maxLimit = 50000

	maxRetries = 3
	retryDelay = 15 * time.Second
)

// apiKey pairs a key with its own request budget.
type apiKey struct {
	value   string
	limiter *rate.Limiter
}

func (k *apiKey) prefix() string {
	if len(k.value) > 8 {
		return k.value[:8]
	}
	return k.value
}

// Client fetches daily aggregates from the Polygon API.
// Keys circulate through a channel: a worker takes one, waits for its limiter, sends, and returns it.
type Client struct {
	rest *resty.Client
	keys chan *apiKey
}

// NewClient creates a client over apiKeys, each limited to one request per cooldown.
func NewClient(baseURL string, apiKeys []string, cooldown time.Duration) (*Client, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("polygon: at least one API key is required")
	}
	keys := make(chan *apiKey, len(apiKeys))
	for _, k := range apiKeys {
		limit := rate.Inf
		if cooldown > 0 {
			limit = rate.Every(cooldown)
		}
		keys <- &apiKey{value: k, limiter: rate.NewLimiter(limit, 1)}
	}
	return &Client{rest: newRestClient(baseURL), keys: keys}, nil
}

// Keys returns the number of keys in the pool.
func (c *Client) Keys() int { return cap(c.keys) }

// Close closes idle connections.
func (c *Client) Close() error {
	c.rest.GetClient().CloseIdleConnections()
	return nil
}

func (c *Client) takeKey(ctx context.Context) (*apiKey, error) {
	select {
	case k := <-c.keys:
		return k, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DailyBars fetches adjusted daily bars for ticker over the inclusive [from, to] days.
func (c *Client) DailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.Bar, error) {
	key, err := c.takeKey(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { c.keys <- key }()

	if err := key.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result AggregatesResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"ticker": ticker,
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
		}).
		SetQueryParams(map[string]string{
			"adjusted": "true",
			"sort":     "asc",
			"limit":    strconv.Itoa(maxLimit),
			"apiKey":   key.value,
		}).
		SetResult(&result).
		Get("/v2/aggs/ticker/{ticker}/range/1/day/{from}/{to}")
	if err != nil {
		return nil, fmt.Errorf("polygon %s (key=%s...): %w", ticker, key.prefix(), err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("polygon %s: status %d: %s", ticker, resp.StatusCode(), resp.String())
	}
	switch result.Status {
	case "OK", "DELAYED":
	default:
		return nil, fmt.Errorf("polygon %s: status %q %s", ticker, result.Status, result.Error)
	}

	bars := make([]model.Bar, 0, len(result.Results))
	for _, raw := range result.Results {
		bars = append(bars, raw.ToBar())
	}
	return bars, nil
}
