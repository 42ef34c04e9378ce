package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/logger"
)

// StrategyConfig holds indicator and crossover parameters.
type StrategyConfig struct {
	ShortWindow     int     `yaml:"short_window" default:"20" validate:"gt=0,ltfield=LongWindow"`
	LongWindow      int     `yaml:"long_window" default:"50" validate:"gt=0"`
	RSIPeriod       int     `yaml:"rsi_period" default:"14" validate:"gt=0"`
	MACDFast        int     `yaml:"macd_fast" default:"12" validate:"gt=0,ltfield=MACDSlow"`
	MACDSlow        int     `yaml:"macd_slow" default:"26" validate:"gt=0"`
	MACDSignal      int     `yaml:"macd_signal" default:"9" validate:"gt=0"`
	BollingerPeriod int     `yaml:"bollinger_period" default:"20" validate:"gt=1"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev" default:"2.0" validate:"gt=0"`
}

// Config holds all application configuration.
type Config struct {
	Data struct {
		Root string `yaml:"root" default:"data" validate:"required"`
	} `yaml:"data"`
	Strategy StrategyConfig `yaml:"strategy"`
	Backtest struct {
		InitialCapital float64 `yaml:"initial_capital" default:"100000" validate:"gt=0"`
		TradingDays    int     `yaml:"trading_days" default:"252" validate:"gt=0"`
	} `yaml:"backtest"`
	Preprocess struct {
		DropOutliers  bool    `yaml:"drop_outliers"`
		IQRMultiplier float64 `yaml:"iqr_multiplier" default:"1.5" validate:"gt=0"`
	} `yaml:"preprocess"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron" default:"0 30 18 * * 1-5" validate:"required"`
	} `yaml:"schedule"`
	Database struct {
		// SQLitePath defaults to runs.db under the results directory of
		// Data.Root; "none" disables run recording.
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr" default:":8080" validate:"required"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Log     logger.Config `yaml:"log"`
	Workers int           `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
}

// SQLiteDisabled as sqlite_path turns off run recording.
const SQLiteDisabled = "none"

var validate = validator.New()

// Load reads config from a YAML file, then applies environment variable
// overrides and finally struct-tag defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
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

	applyEnv(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	switch cfg.Database.SQLitePath {
	case "":
		cfg.Database.SQLitePath = filepath.Join(cfg.Data.Root, "backtest", "results", "runs.db")
	case SQLiteDisabled:
		cfg.Database.SQLitePath = ""
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATA_ROOT"); v != "" {
		cfg.Data.Root = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
}

// Validate checks field constraints declared in the struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// NotifyEnabled reports whether Telegram delivery is configured.
func (c *Config) NotifyEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}
