package app

import (
	"fmt"
	"strings"

	"us-screener/internal/provider"
	"us-screener/internal/provider/polygon"
	"us-screener/internal/universe"
)

// CreateProvider creates DataProvider from config.
func CreateProvider(cfg *Config) (provider.DataProvider, error) {
	switch strings.ToLower(cfg.DataProvider) {
	case "yahoo":
		return provider.NewYahooProvider(cfg.YahooRPS), nil
	case "polygon":
		if len(cfg.PolygonAPIKeys) == 0 {
			return nil, fmt.Errorf("POLYGON_API_KEY or POLYGON_API_KEYS not set")
		}
		return provider.NewPolygonProvider(cfg.PolygonAPIKeys)
	case "tiingo":
		return provider.NewTiingoProvider(provider.TiingoBaseURL, cfg.TiingoAPIKey, cfg.TiingoRPS)
	default:
		return nil, fmt.Errorf("unsupported data provider: %s. Options: yahoo, polygon, tiingo", cfg.DataProvider)
	}
}

// CreateUniverse creates the ticker source from config.
// The polygon universe shares the provider's key pool when the provider is Polygon too.
func CreateUniverse(cfg *Config, dp provider.DataProvider) (universe.Source, error) {
	switch strings.ToLower(cfg.Universe) {
	case "nasdaq":
		return universe.NewNasdaqTrader(cfg.UniverseURL), nil
	case "file":
		if cfg.TickersFile == "" {
			return nil, fmt.Errorf("universe file requires TICKERS_FILE")
		}
		return universe.File{Path: cfg.TickersFile}, nil
	case "polygon":
		if p, ok := dp.(*provider.PolygonProvider); ok {
			return universe.PolygonReference{Lister: p.Client}, nil
		}
		client, err := polygon.NewClient(polygon.BaseURL, cfg.PolygonAPIKeys, polygon.KeyCooldown)
		if err != nil {
			return nil, err
		}
		return universe.PolygonReference{Lister: client}, nil
	default:
		return nil, fmt.Errorf("unsupported universe: %s. Options: nasdaq, file, polygon", cfg.Universe)
	}
}
