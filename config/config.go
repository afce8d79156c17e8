// Package config loads the agent configuration from an optional YAML file
// with environment-variable overrides on top. A .env file in the working
// directory is honored, which keeps credentials out of the YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete agent configuration.
type Config struct {
	Alpaca    AlpacaConfig    `yaml:"alpaca"`
	Trading   TradingConfig   `yaml:"trading"`
	News      NewsConfig      `yaml:"news"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Journal   JournalConfig   `yaml:"journal"`
	Log       LogConfig       `yaml:"log"`
}

// AlpacaConfig holds brokerage credentials and endpoint selection. The key
// and secret normally come from the environment, not the YAML file.
type AlpacaConfig struct {
	APIKey    string `yaml:"api_key,omitempty"`
	APISecret string `yaml:"api_secret,omitempty"`
	Paper     bool   `yaml:"paper"`
	Feed      string `yaml:"feed"`
}

// TradingConfig contains the symbol and decision-loop parameters.
type TradingConfig struct {
	Symbol          string `yaml:"symbol"`
	CooldownSecs    int    `yaml:"cooldown_seconds"`
	SMAWindow       int    `yaml:"sma_window"`
	BarLookbackMins int    `yaml:"bar_lookback_minutes"`
	BarIntervalMins int    `yaml:"bar_interval_minutes"`
	SessionPollSecs int    `yaml:"session_poll_seconds"`
}

func (t TradingConfig) Cooldown() time.Duration    { return time.Duration(t.CooldownSecs) * time.Second }
func (t TradingConfig) BarLookback() time.Duration { return time.Duration(t.BarLookbackMins) * time.Minute }
func (t TradingConfig) BarInterval() time.Duration { return time.Duration(t.BarIntervalMins) * time.Minute }
func (t TradingConfig) SessionPoll() time.Duration { return time.Duration(t.SessionPollSecs) * time.Second }

// NewsConfig controls the headline refresh loop.
type NewsConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	Query       string `yaml:"query"`
	RefreshSecs int    `yaml:"refresh_seconds"`
	PageSize    int    `yaml:"page_size"`
}

func (n NewsConfig) Refresh() time.Duration { return time.Duration(n.RefreshSecs) * time.Second }

// SentimentConfig points at the sentiment classification service.
type SentimentConfig struct {
	URL         string `yaml:"url"`
	TimeoutSecs int    `yaml:"timeout_seconds"`
}

func (s SentimentConfig) Timeout() time.Duration { return time.Duration(s.TimeoutSecs) * time.Second }

// JournalConfig selects the ledger backend.
type JournalConfig struct {
	Type       string `yaml:"type"` // "csv" or "sqlite"
	TradesFile string `yaml:"trades_file,omitempty"`
	DBPath     string `yaml:"db_path,omitempty"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Alpaca: AlpacaConfig{
			Paper: true,
			Feed:  "iex",
		},
		Trading: TradingConfig{
			Symbol:          "TSLA",
			CooldownSecs:    30,
			SMAWindow:       20,
			BarLookbackMins: 60,
			BarIntervalMins: 5,
			SessionPollSecs: 60,
		},
		News: NewsConfig{
			Query:       "TSLA",
			RefreshSecs: 300,
			PageSize:    10,
		},
		Sentiment: SentimentConfig{
			URL:         "http://localhost:8001",
			TimeoutSecs: 30,
		},
		Journal: JournalConfig{
			Type:       "sqlite",
			TradesFile: "./trades.csv",
			DBPath:     "./ledger.db",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file if
// path is non-empty, then environment overrides. A .env file is loaded
// first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setStr(&c.Alpaca.APIKey, "ALPACA_API_KEY")
	setStr(&c.Alpaca.APISecret, "ALPACA_API_SECRET")
	setBool(&c.Alpaca.Paper, "ALPACA_PAPER")
	setStr(&c.Alpaca.Feed, "ALPACA_FEED")

	setStr(&c.Trading.Symbol, "TRADEBOT_SYMBOL")
	setInt(&c.Trading.CooldownSecs, "TRADEBOT_COOLDOWN_SECONDS")
	setInt(&c.Trading.SMAWindow, "TRADEBOT_SMA_WINDOW")
	setInt(&c.Trading.BarLookbackMins, "TRADEBOT_BAR_LOOKBACK_MINUTES")
	setInt(&c.Trading.BarIntervalMins, "TRADEBOT_BAR_INTERVAL_MINUTES")
	setInt(&c.Trading.SessionPollSecs, "TRADEBOT_SESSION_POLL_SECONDS")

	setStr(&c.News.APIKey, "NEWSAPI_KEY")
	setStr(&c.News.Query, "TRADEBOT_NEWS_QUERY")
	setInt(&c.News.RefreshSecs, "TRADEBOT_NEWS_REFRESH_SECONDS")
	setInt(&c.News.PageSize, "TRADEBOT_NEWS_PAGE_SIZE")

	setStr(&c.Sentiment.URL, "TRADEBOT_SENTIMENT_URL")
	setInt(&c.Sentiment.TimeoutSecs, "TRADEBOT_SENTIMENT_TIMEOUT_SECONDS")

	setStr(&c.Journal.Type, "TRADEBOT_JOURNAL_TYPE")
	setStr(&c.Journal.TradesFile, "TRADEBOT_TRADES_FILE")
	setStr(&c.Journal.DBPath, "TRADEBOT_DB_PATH")

	setStr(&c.Log.Level, "TRADEBOT_LOG_LEVEL")
	setBool(&c.Log.Pretty, "TRADEBOT_LOG_PRETTY")
}

// Validate checks the configuration for values the agent cannot run with.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
		return fmt.Errorf("alpaca api_key and api_secret are required")
	}
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.CooldownSecs < 0 {
		return fmt.Errorf("trading.cooldown_seconds must not be negative")
	}
	if c.Trading.SMAWindow <= 0 {
		return fmt.Errorf("trading.sma_window must be positive")
	}
	if c.Trading.BarLookbackMins <= 0 || c.Trading.BarIntervalMins <= 0 {
		return fmt.Errorf("trading bar lookback and interval must be positive")
	}
	if c.News.RefreshSecs <= 0 {
		return fmt.Errorf("news.refresh_seconds must be positive")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && c.Journal.TradesFile == "" {
		return fmt.Errorf("journal.trades_file required for csv type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite type")
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
