package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"us-screener/internal/model"
)

// TiingoBaseURL is the public Tiingo REST endpoint.
const TiingoBaseURL = "https://api.tiingo.com"

// TiingoProvider is a DataProvider backed by the Tiingo end-of-day prices API.
type TiingoProvider struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// tiingoPrice is one row of /tiingo/daily/{ticker}/prices.
type tiingoPrice struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
	AdjClose float64   `json:"adjClose"`
}

type tiingoError struct {
	Detail string `json:"detail"`
}

// NewTiingoProvider creates a Tiingo provider allowing rps requests per second.
func NewTiingoProvider(baseURL, apiKey string, rps float64) (*TiingoProvider, error) {
	if apiKey == "" {
		return nil, errors.New("TIINGO_API_KEY not set")
	}
	if baseURL == "" {
		baseURL = TiingoBaseURL
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Minute).
		SetHeader("Authorization", "Token "+apiKey).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	return &TiingoProvider{client: client, limiter: rate.NewLimiter(limit, 1)}, nil
}

// GetName returns provider name
func (t *TiingoProvider) GetName() string { return "Tiingo" }

// Close closes idle connections.
func (t *TiingoProvider) Close() error {
	t.client.GetClient().CloseIdleConnections()
	return nil
}

// FetchDaily fetches end-of-day prices for the inclusive range.
func (t *TiingoProvider) FetchDaily(ctx context.Context, ticker string, r model.DateRange) (model.Series, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, ErrNoData)
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var rows []tiingoPrice
	var apiErr tiingoError
	resp, err := t.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"startDate": r.From.Format("2006-01-02"),
			"endDate":   r.To.Format("2006-01-02"),
		}).
		SetResult(&rows).
		SetError(&apiErr).
		Get("/tiingo/daily/{ticker}/prices")
	if err != nil {
		return nil, fmt.Errorf("tiingo %s: %w", ticker, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w: %s", ticker, r, ErrNoData, apiErr.Detail)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tiingo %s: status %d: %s", ticker, resp.StatusCode(), apiErr.Detail)
	}

	series := make(model.Series, 0, len(rows))
	for _, p := range rows {
		day := model.Day(p.Date)
		if !r.Contains(day) {
			continue
		}
		series = append(series, model.NewBar(day, p.Open, p.High, p.Low, p.Close, p.AdjClose, int64(p.Volume)))
	}
	series = series.Normalize()
	if len(series) == 0 {
		return nil, fmt.Errorf("%s %s: %w", ticker, r, ErrNoData)
	}
	return series, nil
}
