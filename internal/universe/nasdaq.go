package universe

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// NasdaqTradedURL is the symbol directory of every security traded on Nasdaq systems.
const NasdaqTradedURL = "https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqtraded.txt"

// NasdaqTrader downloads the Nasdaq Trader symbol directory.
type NasdaqTrader struct {
	URL    string
	client *resty.Client
}

// NewNasdaqTrader creates a source for url; an empty url uses NasdaqTradedURL.
func NewNasdaqTrader(url string) *NasdaqTrader {
	if url == "" {
		url = NasdaqTradedURL
	}
	return &NasdaqTrader{
		URL: url,
		client: resty.New().
			SetTimeout(time.Minute).
			SetRetryCount(2).
			SetRetryWaitTime(2 * time.Second),
	}
}

// Tickers downloads and parses the directory.
func (n *NasdaqTrader) Tickers(ctx context.Context) ([]string, error) {
	resp, err := n.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(n.URL)
	if err != nil {
		return nil, fmt.Errorf("download symbol directory: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.IsError() {
		return nil, fmt.Errorf("download symbol directory: status %d", resp.StatusCode())
	}

	tickers, err := ParseNasdaqTraded(body)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded symbol directory", "count", len(tickers), "url", n.URL)
	return tickers, nil
}

// ParseNasdaqTraded reads the pipe-delimited directory and returns symbols flagged as Nasdaq traded.
// Test issues and the "File Creation Time" footer are skipped.
func ParseNasdaqTraded(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read directory header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	symIdx, ok := col["Symbol"]
	if !ok {
		return nil, errors.New("symbol directory: missing Symbol column")
	}
	tradedIdx, ok := col["Nasdaq Traded"]
	if !ok {
		return nil, errors.New("symbol directory: missing Nasdaq Traded column")
	}
	testIdx, hasTest := col["Test Issue"]

	var tickers []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read directory row: %w", err)
		}
		if len(rec) > 0 && strings.HasPrefix(rec[0], "File Creation Time") {
			continue
		}
		if len(rec) <= symIdx || len(rec) <= tradedIdx {
			continue
		}
		if rec[tradedIdx] != "Y" {
			continue
		}
		if hasTest && len(rec) > testIdx && rec[testIdx] == "Y" {
			continue
		}
		tickers = append(tickers, rec[symIdx])
	}
	return normalize(tickers), nil
}
