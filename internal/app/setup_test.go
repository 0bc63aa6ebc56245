package app

import (
	"testing"

	"us-screener/internal/provider"
	"us-screener/internal/universe"
)

func TestCreateProvider(t *testing.T) {
	cfg := DefaultConfig()
	dp, err := CreateProvider(cfg)
	if err != nil || dp.GetName() != "Yahoo" {
		t.Fatalf("yahoo: %v, %v", dp, err)
	}

	cfg.DataProvider = "Polygon"
	cfg.PolygonAPIKeys = []string{"k"}
	dp, err = CreateProvider(cfg)
	if err != nil || dp.GetName() != "Polygon" {
		t.Fatalf("polygon: %v, %v", dp, err)
	}

	cfg.DataProvider = "tiingo"
	if _, err := CreateProvider(cfg); err == nil {
		t.Error("tiingo without key should fail")
	}
	cfg.TiingoAPIKey = "t"
	if dp, err := CreateProvider(cfg); err != nil || dp.GetName() != "Tiingo" {
		t.Errorf("tiingo: %v, %v", dp, err)
	}
}

func TestCreateUniverse(t *testing.T) {
	cfg := DefaultConfig()
	src, err := CreateUniverse(cfg, nil)
	if _, ok := src.(*universe.NasdaqTrader); err != nil || !ok {
		t.Errorf("nasdaq: %T, %v", src, err)
	}

	cfg.Universe = "file"
	if _, err := CreateUniverse(cfg, nil); err == nil {
		t.Error("file universe without path should fail")
	}
	cfg.TickersFile = "tickers.txt"
	if src, _ := CreateUniverse(cfg, nil); src != (universe.File{Path: "tickers.txt"}) {
		t.Errorf("file: %#v", src)
	}

	cfg.Universe = "polygon"
	cfg.PolygonAPIKeys = []string{"k"}
	pp, _ := provider.NewPolygonProvider(cfg.PolygonAPIKeys)
	src, err = CreateUniverse(cfg, pp)
	ref, ok := src.(universe.PolygonReference)
	if err != nil || !ok || ref.Lister != pp.Client {
		t.Errorf("polygon universe should share the provider client: %#v, %v", src, err)
	}
}
