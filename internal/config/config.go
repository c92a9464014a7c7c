package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SetupRadar/internal/calculator"
	"SetupRadar/internal/model"
	"SetupRadar/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Portfolio struct {
		Capital   float64 `yaml:"capital"`
		RiskPct   float64 `yaml:"risk_pct"`
		StateFile string  `yaml:"state_file"`
	} `yaml:"portfolio"`
	Analysis struct {
		SMAWindows           []int               `yaml:"sma_windows"`
		ShortLookback        int                 `yaml:"short_lookback"`
		RangeLookback        int                 `yaml:"range_lookback"`
		RSIPeriod            int                 `yaml:"rsi_period"`
		Thresholds           strategy.Thresholds `yaml:"thresholds"`
		FairValueSensitivity float64             `yaml:"fair_value_sensitivity"`
	} `yaml:"analysis"`
	DataSource struct {
		Provider       string `yaml:"provider"`
		AlpacaKey      string `yaml:"alpaca_key"`
		AlpacaSecret   string `yaml:"alpaca_secret"`
		Proxy          string `yaml:"proxy"`
		RequestsPerSec int    `yaml:"requests_per_sec"`
	} `yaml:"data_source"`
	Directory struct {
		CSVPath string `yaml:"csv_path"`
	} `yaml:"directory"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Watchlist struct {
		Symbols []string `yaml:"symbols"`
		Cron    string   `yaml:"cron"`
	} `yaml:"watchlist"`
	Log LogConfig `yaml:"log"`
}

// LogConfig selects the log level and the optional rotating file sink.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
	ProviderMock   = "mock"
)

// Load reads config from a YAML file, then applies environment variable overrides.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		c.DataSource.AlpacaKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		c.DataSource.AlpacaSecret = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.DataSource.Proxy = v
	}
	if v := os.Getenv("PORTFOLIO_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Portfolio.Capital = f
		}
	}
	if v := os.Getenv("PORTFOLIO_RISK_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Portfolio.RiskPct = f
		}
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist.Symbols = splitList(v)
	}
	if v := os.Getenv("WATCHLIST_CRON"); v != "" {
		c.Watchlist.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	ind := calculator.DefaultIndicatorConfig()
	if len(c.Analysis.SMAWindows) == 0 {
		c.Analysis.SMAWindows = ind.SMAWindows
	}
	if c.Analysis.ShortLookback == 0 {
		c.Analysis.ShortLookback = ind.ShortLookback
	}
	if c.Analysis.RangeLookback == 0 {
		c.Analysis.RangeLookback = ind.RangeLookback
	}
	if c.Analysis.RSIPeriod == 0 {
		c.Analysis.RSIPeriod = ind.RSIPeriod
	}
	if c.Analysis.Thresholds == (strategy.Thresholds{}) {
		c.Analysis.Thresholds = strategy.DefaultThresholds()
	}
	if c.Analysis.FairValueSensitivity == 0 {
		c.Analysis.FairValueSensitivity = 2
	}
	if c.Portfolio.Capital == 0 {
		c.Portfolio.Capital = 10000
	}
	if c.Portfolio.RiskPct == 0 {
		c.Portfolio.RiskPct = 1
	}
	if c.Portfolio.StateFile == "" {
		c.Portfolio.StateFile = "data/portfolio.json"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.DataSource.RequestsPerSec == 0 {
		c.DataSource.RequestsPerSec = 2
	}
	if c.Directory.CSVPath == "" {
		c.Directory.CSVPath = "data/symbols.csv"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/setup_radar.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Watchlist.Cron == "" {
		c.Watchlist.Cron = "0 30 22 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
}

// Validate checks value ranges. Telegram and HTTP are optional.
func (c *Config) Validate() error {
	if err := c.PortfolioConfig().Validate(); err != nil {
		return err
	}
	for _, w := range c.Analysis.SMAWindows {
		if w <= 0 {
			return fmt.Errorf("%w: analysis.sma_windows must be positive, got %d", model.ErrConfiguration, w)
		}
	}
	if c.Analysis.ShortLookback <= 0 || c.Analysis.RangeLookback <= 0 || c.Analysis.RSIPeriod <= 0 {
		return fmt.Errorf("%w: analysis lookbacks must be positive", model.ErrConfiguration)
	}
	if err := c.Analysis.Thresholds.Validate(); err != nil {
		return fmt.Errorf("analysis.thresholds: %w", err)
	}
	if c.Analysis.FairValueSensitivity < 0 {
		return fmt.Errorf("%w: analysis.fair_value_sensitivity must not be negative", model.ErrConfiguration)
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderAlpaca:
		if c.DataSource.AlpacaKey == "" || c.DataSource.AlpacaSecret == "" {
			return fmt.Errorf("%w: alpaca provider needs alpaca_key and alpaca_secret", model.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown data_source.provider %q", model.ErrConfiguration, c.DataSource.Provider)
	}
	return nil
}

// PortfolioConfig returns the configured default portfolio.
func (c *Config) PortfolioConfig() model.PortfolioConfig {
	return model.PortfolioConfig{Capital: c.Portfolio.Capital, RiskPct: c.Portfolio.RiskPct}
}

// IndicatorConfig returns the configured indicator windows.
func (c *Config) IndicatorConfig() calculator.IndicatorConfig {
	return calculator.IndicatorConfig{
		SMAWindows:    c.Analysis.SMAWindows,
		ShortLookback: c.Analysis.ShortLookback,
		RangeLookback: c.Analysis.RangeLookback,
		RSIPeriod:     c.Analysis.RSIPeriod,
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
