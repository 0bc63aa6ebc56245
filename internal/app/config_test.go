package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataProvider != "yahoo" || cfg.Workers != 8 || cfg.LookbackDays != 250 || cfg.SaveFormat != "parquet" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Screener.RSIUpper != 75 || cfg.Screener.BandPeriod != 20 {
		t.Errorf("screener = %+v", cfg.Screener)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := chdirTemp(t)
	yamlPath := filepath.Join(dir, "config.yaml")
	os.WriteFile(yamlPath, []byte(`
data_provider: polygon
polygon_api_keys: [yaml-key]
workers: 4
error_ttl: 72h
profile: dev
screener:
  rsi_period: 10
  rsi_upper: 80
  rsi_lower: 20
  band_period: 15
  band_width: 2.5
`), 0644)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("WORKERS=6\nLOG_LEVEL=debug\n"), 0644)
	t.Setenv("POLYGON_API_KEYS", "k1, k2,")
	t.Setenv("WORKERS", "12")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataProvider != "polygon" {
		t.Errorf("DataProvider = %s", cfg.DataProvider)
	}
	if strings.Join(cfg.PolygonAPIKeys, ",") != "k1,k2" {
		t.Errorf("keys = %v, want env to win", cfg.PolygonAPIKeys)
	}
	if cfg.Workers != 12 {
		t.Errorf("Workers = %d, want env value", cfg.Workers)
	}
	if cfg.ErrorTTL != 72*time.Hour {
		t.Errorf("ErrorTTL = %v", cfg.ErrorTTL)
	}
	if cfg.SaveFormat != "json" {
		t.Errorf("SaveFormat = %s, want json for dev profile", cfg.SaveFormat)
	}
	if cfg.Screener.RSIUpper != 80 || cfg.Screener.BandWidth != 2.5 {
		t.Errorf("screener = %+v", cfg.Screener)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigYAMLOverridesDotenv(t *testing.T) {
	dir := chdirTemp(t)
	os.MkdirAll(filepath.Join(dir, "conf"), 0755)
	os.WriteFile(filepath.Join(dir, "conf", "screener.yaml"), []byte("workers: 4\n"), 0644)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("CONFIG_PATH=conf/screener.yaml\nWORKERS=6\nLOOKBACK_DAYS=100\n"), 0644)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("WORKERS", "")
	t.Setenv("LOOKBACK_DAYS", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want YAML value over .env", cfg.Workers)
	}
	if cfg.LookbackDays != 100 {
		t.Errorf("LookbackDays = %d, want .env value over default", cfg.LookbackDays)
	}
	if os.Getenv("WORKERS") != "" {
		t.Error(".env leaked into the process environment")
	}
}

func TestLoadConfigBadEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ERROR_TTL", "forever")
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected ERROR_TTL parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown provider", func(c *Config) { c.DataProvider = "bloomberg" }, "unsupported data provider"},
		{"polygon without keys", func(c *Config) { c.DataProvider = "polygon" }, "POLYGON_API_KEY"},
		{"tiingo without key", func(c *Config) { c.DataProvider = "tiingo" }, "TIINGO_API_KEY"},
		{"polygon universe without keys", func(c *Config) { c.Universe = "polygon" }, "universe polygon"},
		{"file without path", func(c *Config) { c.Universe = "file" }, "TICKERS_FILE"},
		{"bad format", func(c *Config) { c.SaveFormat = "csv" }, "unsupported save format"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad cron", func(c *Config) { c.Schedule = "every day" }, "schedule"},
		{"inverted thresholds", func(c *Config) { c.Screener.RSILower = 90 }, "rsi_lower"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SaveFormat = "parquet"
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}
