package universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"us-screener/internal/model"
)

const directory = `Nasdaq Traded|Symbol|Security Name|Listing Exchange|Market Category|ETF|Round Lot Size|Test Issue|Financial Status|CQS Symbol|NASDAQ Symbol|NextShares
Y|AAPL|Apple Inc. - Common Stock|Q|Q|N|100|N|N||AAPL|N
Y|BRK.B|Berkshire Hathaway Inc.|N| |N|100|N||BRK.B|BRK.B|N
N|OLDX|Delisted Co|N| |N|100|N||OLDX|OLDX|N
Y|ZXZZT|NASDAQ TEST STOCK|Q|G|N|100|Y|N||ZXZZT|N
Y|msft|Microsoft Corporation|Q|Q|N|100|N|N||MSFT|N
File Creation Time: 1019202604:02|||||||||||
`

func TestParseNasdaqTraded(t *testing.T) {
	got, err := ParseNasdaqTraded(strings.NewReader(directory))
	if err != nil {
		t.Fatalf("ParseNasdaqTraded: %v", err)
	}
	want := []string{"AAPL", "BRK.B", "MSFT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseNasdaqTradedMissingColumn(t *testing.T) {
	if _, err := ParseNasdaqTraded(strings.NewReader("Symbol|Name\nAAPL|Apple\n")); err == nil {
		t.Fatal("expected error for missing Nasdaq Traded column")
	}
}

func TestNasdaqTraderDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(directory))
	}))
	defer srv.Close()

	got, err := NewNasdaqTrader(srv.URL).Tickers(context.Background())
	if err != nil {
		t.Fatalf("Tickers: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %v", got)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "tickers.txt")
	os.WriteFile(txt, []byte("# watchlist\naapl\n\nMSFT\nAAPL\n"), 0644)
	js := filepath.Join(dir, "tickers.json")
	os.WriteFile(js, []byte(`["tsla"," nvda ","TSLA"]`), 0644)

	got, err := File{Path: txt}.Tickers(context.Background())
	if err != nil || !reflect.DeepEqual(got, []string{"AAPL", "MSFT"}) {
		t.Errorf("txt: got %v, %v", got, err)
	}
	got, err = File{Path: js}.Tickers(context.Background())
	if err != nil || !reflect.DeepEqual(got, []string{"NVDA", "TSLA"}) {
		t.Errorf("json: got %v, %v", got, err)
	}
	if _, err := (File{Path: filepath.Join(dir, "x.csv")}).Tickers(context.Background()); err == nil {
		t.Error("expected error for .csv")
	}
}

func TestExclude(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	errs := model.ErrorSet{}
	errs.Add("OLD", now.Add(-48*time.Hour))
	errs.Add("NEW", now.Add(-time.Hour))
	tickers := []string{"AAPL", "NEW", "OLD"}

	keep, skipped := Exclude(tickers, errs, now, 0)
	if !reflect.DeepEqual(keep, []string{"AAPL"}) || skipped != 2 {
		t.Errorf("permanent: keep=%v skipped=%d", keep, skipped)
	}

	keep, skipped = Exclude(tickers, errs, now, 24*time.Hour)
	if !reflect.DeepEqual(keep, []string{"AAPL", "OLD"}) || skipped != 1 {
		t.Errorf("ttl: keep=%v skipped=%d", keep, skipped)
	}
}

type listerFunc func(ctx context.Context, market string) ([]string, error)

func (f listerFunc) ListTickers(ctx context.Context, market string) ([]string, error) {
	return f(ctx, market)
}

func TestPolygonReference(t *testing.T) {
	src := PolygonReference{Lister: listerFunc(func(_ context.Context, market string) ([]string, error) {
		if market != "stocks" {
			t.Errorf("market = %q", market)
		}
		return []string{"msft", "AAPL", "MSFT"}, nil
	})}
	got, err := src.Tickers(context.Background())
	if err != nil || !reflect.DeepEqual(got, []string{"AAPL", "MSFT"}) {
		t.Errorf("got %v, %v", got, err)
	}
}
