package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
symbols: [SPY, QQQ, AAPL, MSFT, TSLA, NVDA]
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Symbols) != 6 {
		t.Fatalf("symbols = %v", cfg.Symbols)
	}
	if cfg.Yahoo.BaseURL != "https://query1.finance.yahoo.com" {
		t.Fatalf("yahoo url = %q", cfg.Yahoo.BaseURL)
	}
	if cfg.Swarms.Timeout != 120*time.Second {
		t.Fatalf("swarms timeout = %v", cfg.Swarms.Timeout)
	}
	if cfg.Schedule.Cron != "" {
		t.Fatalf("cron should default to disabled")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("metrics path = %q", cfg.Metrics.Path)
	}
}

func TestLoadRequiresSymbols(t *testing.T) {
	if _, err := Load(writeConfig(t, `environment: production`)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadBootsWithoutSwarmsKey(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Swarms.APIKey != "" {
		t.Fatalf("expected empty key")
	}
}

func TestLoadKafkaNeedsBrokers(t *testing.T) {
	yaml := minimalYAML + `
kafka:
  enabled: true
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatalf("expected broker validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SWARMS_API_KEY", "sk-env")
	t.Setenv("FMP_API_KEY", "fmp-env")
	t.Setenv("MAILGUN_API_KEY", "mg-key")
	t.Setenv("MAILGUN_DOMAIN", "mg.example.com")
	t.Setenv("RECIPIENT_EMAIL", "trader@example.com")
	t.Setenv("SYMBOLS", "SPY,NVDA")
	t.Setenv("PORT", "9090")
	t.Setenv("SCHEDULE_CRON", "0 21 * * 1-5")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Swarms.APIKey != "sk-env" || cfg.News.APIKey != "fmp-env" {
		t.Fatalf("api keys not overridden")
	}
	if !cfg.EmailConfigured() {
		t.Fatalf("email should be configured")
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "SPY" || cfg.Symbols[1] != "NVDA" {
		t.Fatalf("symbols = %v", cfg.Symbols)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Schedule.Cron != "0 21 * * 1-5" {
		t.Fatalf("cron = %q", cfg.Schedule.Cron)
	}
}

func TestLoadWithEnvInvalidPortKeepsDefault(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
}

func TestEmailConfigured(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.EmailConfigured() {
		t.Fatalf("expected unconfigured")
	}
	cfg.Mailgun.APIKey = "k"
	cfg.Mailgun.Domain = "d"
	if cfg.EmailConfigured() {
		t.Fatalf("recipient still missing")
	}
	cfg.Mailgun.Recipient = "r@example.com"
	if !cfg.EmailConfigured() {
		t.Fatalf("expected configured")
	}
}
