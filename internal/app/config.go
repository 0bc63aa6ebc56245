package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"us-screener/internal/saver"
	"us-screener/internal/screener"
)

// DefaultConfigPath is read when neither a flag nor CONFIG_PATH names a file.
const DefaultConfigPath = "configs/config.yaml"

// Config holds application configuration.
// Sources in order of precedence: process environment, YAML file, .env, defaults.
type Config struct {
	DataProvider   string          `yaml:"data_provider"` // yahoo | polygon | tiingo
	Universe       string          `yaml:"universe"`      // nasdaq | file | polygon
	UniverseURL    string          `yaml:"universe_url"`
	TickersFile    string          `yaml:"tickers_file"`
	DataDir        string          `yaml:"data_dir"`
	SaveFormat     string          `yaml:"save_format"` // parquet | json; empty follows Profile
	Profile        string          `yaml:"profile"`     // dev | prod
	LogLevel       string          `yaml:"log_level"`   // debug | info | warn | error
	LogFormat      string          `yaml:"log_format"`  // text | json
	PolygonAPIKeys []string        `yaml:"polygon_api_keys"`
	YahooRPS       float64         `yaml:"yahoo_rps"`
	TiingoAPIKey   string          `yaml:"tiingo_api_key"`
	TiingoRPS      float64         `yaml:"tiingo_rps"`
	Workers        int             `yaml:"workers"`
	LookbackDays   int             `yaml:"lookback_days"`
	ErrorTTL       time.Duration   `yaml:"error_ttl"` // 0 keeps failed tickers excluded until cleared
	Schedule       string          `yaml:"schedule"`  // 5-field cron, UTC
	SQLitePath     string          `yaml:"sqlite_path"`
	HTTPAddr       string          `yaml:"http_addr"`
	Screener       screener.Params `yaml:"screener"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DataProvider: "yahoo",
		Universe:     "nasdaq",
		DataDir:      "data",
		Profile:      "prod",
		LogLevel:     "info",
		LogFormat:    "text",
		YahooRPS:     4,
		TiingoRPS:    1,
		Workers:      8,
		LookbackDays: 250,
		Schedule:     "30 0 * * *",
		HTTPAddr:     ":8080",
		Screener:     screener.DefaultParams(),
	}
}

// LoadConfig builds the configuration. path may be empty.
func LoadConfig(path string) (*Config, error) {
	dotenv, err := readDotenv()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnv(dotenv); err != nil {
		return nil, fmt.Errorf(".env: %w", err)
	}
	if path == "" {
		path = getEnv("CONFIG_PATH", dotenv("CONFIG_PATH"), DefaultConfigPath)
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if cfg.SaveFormat == "" {
		cfg.SaveFormat = formatForProfile(cfg.Profile)
	}
	return cfg, nil
}

// envLookup returns the value of key in one configuration layer, empty when unset.
type envLookup func(key string) string

// readDotenv reads ./.env without exporting it, so the YAML file can still override it.
func readDotenv() (envLookup, error) {
	vars, err := godotenv.Read()
	if errors.Is(err, os.ErrNotExist) {
		return func(string) string { return "" }, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return func(key string) string { return vars[key] }, nil
}

func (c *Config) applyEnv(env envLookup) error {
	setString(&c.DataProvider, env("DATA_PROVIDER"))
	setString(&c.Universe, env("UNIVERSE"))
	setString(&c.UniverseURL, env("UNIVERSE_URL"))
	setString(&c.TickersFile, env("TICKERS_FILE"))
	setString(&c.DataDir, env("DATA_DIR"))
	setString(&c.SaveFormat, env("SAVE_FORMAT"))
	setString(&c.Profile, env("PROFILE"))
	setString(&c.LogLevel, env("LOG_LEVEL"))
	setString(&c.LogFormat, env("LOG_FORMAT"))
	setString(&c.Schedule, env("SCHEDULE"))
	setString(&c.SQLitePath, env("SQLITE_PATH"))
	setString(&c.HTTPAddr, env("HTTP_ADDR"))
	setString(&c.TiingoAPIKey, env("TIINGO_API_KEY"))
	if keys := parsePolygonAPIKeys(env); keys != nil {
		c.PolygonAPIKeys = keys
	}

	if v := env("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := env("LOOKBACK_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOOKBACK_DAYS: %w", err)
		}
		c.LookbackDays = n
	}
	if v := env("ERROR_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ERROR_TTL: %w", err)
		}
		c.ErrorTTL = d
	}
	if v := env("YAHOO_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("YAHOO_RPS: %w", err)
		}
		c.YahooRPS = f
	}
	if v := env("TIINGO_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TIINGO_RPS: %w", err)
		}
		c.TiingoRPS = f
	}
	return nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DataProvider) {
	case "yahoo":
	case "polygon":
		if len(c.PolygonAPIKeys) == 0 {
			return errors.New("POLYGON_API_KEY or POLYGON_API_KEYS not set")
		}
	case "tiingo":
		if c.TiingoAPIKey == "" {
			return errors.New("TIINGO_API_KEY not set")
		}
	default:
		return fmt.Errorf("unsupported data provider: %s. Options: yahoo, polygon, tiingo", c.DataProvider)
	}
	switch strings.ToLower(c.Universe) {
	case "nasdaq":
	case "file":
		if c.TickersFile == "" {
			return errors.New("universe file requires TICKERS_FILE")
		}
	case "polygon":
		if len(c.PolygonAPIKeys) == 0 {
			return errors.New("universe polygon requires POLYGON_API_KEY or POLYGON_API_KEYS")
		}
	default:
		return fmt.Errorf("unsupported universe: %s. Options: nasdaq, file, polygon", c.Universe)
	}
	if _, err := saver.ParseFormat(c.SaveFormat); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.LookbackDays <= 0 {
		return errors.New("lookback_days must be positive")
	}
	if c.ErrorTTL < 0 {
		return errors.New("error_ttl must not be negative")
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("schedule %q: %w", c.Schedule, err)
	}
	p := c.Screener
	if p.RSIPeriod <= 0 || p.BandPeriod <= 0 || p.BandWidth <= 0 {
		return errors.New("screener periods and band width must be positive")
	}
	if p.RSILower >= p.RSIUpper {
		return errors.New("screener rsi_lower must be below rsi_upper")
	}
	return nil
}

// Format returns the validated row format.
func (c *Config) Format() saver.Format {
	f, _ := saver.ParseFormat(c.SaveFormat)
	return f
}

// CacheDir returns data/cache
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// getEnv returns the process value of key, then the first non-empty fallback.
func getEnv(key string, fallbacks ...string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	for _, v := range fallbacks {
		if v != "" {
			return v
		}
	}
	return ""
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func formatForProfile(profile string) string {
	switch profile {
	case "dev", "development":
		return string(saver.JSON)
	default:
		return string(saver.Parquet)
	}
}

func parsePolygonAPIKeys(env envLookup) []string {
	s := env("POLYGON_API_KEYS")
	if s == "" {
		s = env("POLYGON_API_KEY")
	}
	if s == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
