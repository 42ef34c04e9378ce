package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy.ShortWindow != 20 || cfg.Strategy.LongWindow != 50 {
		t.Errorf("expected 20/50 windows, got %d/%d", cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	}
	if cfg.Backtest.InitialCapital != 100000 {
		t.Errorf("expected initial capital 100000, got %v", cfg.Backtest.InitialCapital)
	}
	if cfg.Strategy.BollingerStdDev != 2.0 {
		t.Errorf("expected bollinger std 2.0, got %v", cfg.Strategy.BollingerStdDev)
	}
	if cfg.Database.SQLitePath != filepath.Join("data", "backtest", "results", "runs.db") {
		t.Errorf("unexpected sqlite path %q", cfg.Database.SQLitePath)
	}
	if cfg.Data.Root != "data" || cfg.Workers != 4 {
		t.Errorf("unexpected defaults: root=%q workers=%d", cfg.Data.Root, cfg.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.NotifyEnabled() {
		t.Error("notification should be disabled without a token")
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
data:
  root: /srv/market
strategy:
  short_window: 10
  long_window: 30
workers: 2
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data.Root != "/srv/market" || cfg.Strategy.ShortWindow != 10 || cfg.Strategy.LongWindow != 30 {
		t.Errorf("yaml values not applied: %+v", cfg.Strategy)
	}
	if cfg.Strategy.RSIPeriod != 14 {
		t.Errorf("expected default rsi period, got %d", cfg.Strategy.RSIPeriod)
	}
	if cfg.Server.Addr != ":9090" || cfg.Telegram.ChatID != 42 {
		t.Errorf("env overrides not applied: addr=%q chat=%d", cfg.Server.Addr, cfg.Telegram.ChatID)
	}
	if !cfg.NotifyEnabled() {
		t.Error("expected notification enabled")
	}
}

func TestValidate_WindowOrder(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Strategy.ShortWindow = 60
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when short window >= long window")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("strategy: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_SQLitePathFollowsDataRoot(t *testing.T) {
	absent := filepath.Join(t.TempDir(), "absent.yaml")

	t.Setenv("DATA_ROOT", "/srv/market")
	cfg, err := Load(absent)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/srv/market", "backtest", "results", "runs.db"); cfg.Database.SQLitePath != want {
		t.Errorf("sqlite path = %q, want %q", cfg.Database.SQLitePath, want)
	}

	t.Setenv("SQLITE_PATH", "/var/lib/runs.db")
	if cfg, err = Load(absent); err != nil {
		t.Fatal(err)
	}
	if cfg.Database.SQLitePath != "/var/lib/runs.db" {
		t.Errorf("explicit sqlite path overridden: %q", cfg.Database.SQLitePath)
	}

	t.Setenv("SQLITE_PATH", SQLiteDisabled)
	if cfg, err = Load(absent); err != nil {
		t.Fatal(err)
	}
	if cfg.Database.SQLitePath != "" {
		t.Errorf("disabled sqlite path = %q, want empty", cfg.Database.SQLitePath)
	}
}
