package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"StockScreener/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Universe struct {
		ExcludeSpecial bool `yaml:"exclude_special"`
		MainBoardsOnly bool `yaml:"main_boards_only"`
		RequireBullish bool `yaml:"require_bullish"`
		MaxInstruments int  `yaml:"max_instruments"`
	} `yaml:"universe"`
	Fetch struct {
		LookbackBars      int     `yaml:"lookback_bars"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"fetch"`
	Screen struct {
		Concurrency   int `yaml:"concurrency"`
		ProgressEvery int `yaml:"progress_every"`
	} `yaml:"screen"`
	Patterns *strategy.Config `yaml:"patterns"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{Patterns: strategy.DefaultConfig()}
	cfg.Universe.ExcludeSpecial = true
	cfg.Universe.MainBoardsOnly = true
	cfg.Universe.RequireBullish = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SCREEN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Screen.Concurrency = n
		}
	}
	if v := os.Getenv("MAX_INSTRUMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Universe.MaxInstruments = n
		}
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Fetch.LookbackBars == 0 {
		cfg.Fetch.LookbackBars = 200
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 15
	}
	if cfg.Fetch.RequestsPerSecond == 0 {
		cfg.Fetch.RequestsPerSecond = 5
	}
	if cfg.Screen.Concurrency == 0 {
		cfg.Screen.Concurrency = 8
	}
	if cfg.Screen.ProgressEvery == 0 {
		cfg.Screen.ProgressEvery = 200
	}
	if cfg.Schedule.DailyCron == "" {
		// Weekdays at 15:30 local, right after the A-share close.
		cfg.Schedule.DailyCron = "0 30 15 * * 1-5"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "data/reports"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stock_screener.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and thresholds are sane.
func (c *Config) Validate() error {
	if c.Fetch.LookbackBars < 30 {
		return fmt.Errorf("fetch.lookback_bars must be >= 30, got %d", c.Fetch.LookbackBars)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive")
	}
	if c.Screen.Concurrency < 1 {
		return fmt.Errorf("screen.concurrency must be >= 1, got %d", c.Screen.Concurrency)
	}
	if err := c.Patterns.Validate(); err != nil {
		return fmt.Errorf("patterns: %w", err)
	}
	return nil
}
