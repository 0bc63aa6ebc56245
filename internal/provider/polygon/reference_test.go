package polygon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestListTickersFollowsNextURL(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("apiKey") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("cursor") == "" {
			if r.URL.Query().Get("market") != "stocks" {
				t.Errorf("first page query = %v", r.URL.Query())
			}
			fmt.Fprintf(w, `{"status":"OK","results":[
				{"ticker":"AAPL","market":"stocks","active":true},
				{"ticker":"X:BTCUSD","market":"crypto","active":true}],
				"next_url":"%s/v3/reference/tickers?cursor=abc"}`, srv.URL)
			return
		}
		w.Write([]byte(`{"status":"OK","results":[
			{"ticker":"MSFT","market":"stocks","active":true},
			{"ticker":"AAPL","market":"stocks","active":true}]}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, []string{"k"}, 0)
	got, err := c.ListTickers(context.Background(), "stocks")
	if err != nil {
		t.Fatalf("ListTickers: %v", err)
	}
	if want := []string{"AAPL", "MSFT"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
