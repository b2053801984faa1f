package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
market:
  source: clickhouse
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Disclosure.TableTTL != time.Hour {
		t.Fatalf("table ttl = %v", cfg.Disclosure.TableTTL)
	}
	if cfg.Disclosure.FlowMemoSize != 1024 {
		t.Fatalf("flow memo size = %d", cfg.Disclosure.FlowMemoSize)
	}
	if cfg.Market.Timeout != 10*time.Second {
		t.Fatalf("market timeout = %v", cfg.Market.Timeout)
	}
	if cfg.API.CacheTTL != 30*time.Second {
		t.Fatalf("api cache ttl = %v", cfg.API.CacheTTL)
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
market:
  source: csv
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRequiresGatewayURL(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
market:
  source: gateway
`))
	if err == nil {
		t.Fatalf("expected validation error for missing gateway url")
	}
}

func TestLoadRequiresBrokersWhenKafkaEnabled(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
market:
  source: clickhouse
kafka:
  enabled: true
`))
	if err == nil {
		t.Fatalf("expected validation error for empty brokers")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MARKET_SOURCE", "gateway")
	t.Setenv("MARKET_GATEWAY_URL", "http://gateway:8080")
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Market.Source != "gateway" {
		t.Fatalf("source = %q", cfg.Market.Source)
	}
	if cfg.Market.GatewayURL != "http://gateway:8080" {
		t.Fatalf("gateway url = %q", cfg.Market.GatewayURL)
	}
	if cfg.ClickHouse.Host != "ch.internal" {
		t.Fatalf("clickhouse host = %q", cfg.ClickHouse.Host)
	}
}
