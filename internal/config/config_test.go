//go:build !integration

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"qwintry-bot/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_SECRET", "TELEGRAM_WEBHOOK_URL",
		"ABACUS_DEPLOYMENT_TOKEN", "ABACUS_DEPLOYMENT_ID", "REDIS_URL",
		"ADMIN_JWT_SECRET", "LOG_LEVEL", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Port != 8080 || cfg.HTTP.WebhookPath != "/telegram/webhook" {
		t.Errorf("http defaults = %+v", cfg.HTTP)
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("backend = %q", cfg.Session.Backend)
	}
	if cfg.AI.DeploymentID != DefaultAIDeploymentID || len(cfg.AI.BaseURLs) != 1 {
		t.Errorf("ai defaults = %+v", cfg.AI)
	}
	if cfg.Shipping.MaxWeight != "50" || cfg.Shipping.Dimensions.Length != "10" {
		t.Errorf("shipping defaults = %+v", cfg.Shipping)
	}
	if len(cfg.Catalog.Warehouses) != 5 || cfg.Catalog.Warehouses[0].Hub != "US1" {
		t.Errorf("warehouses = %+v", cfg.Catalog.Warehouses)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
http:
  port: 9000
  workers: 4
session:
  ttl: 30m
ai:
  base_urls: ["http://a", "http://b"]
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9100")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TELEGRAM_BOT_TOKEN", "  123:abc  ")

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Port != 9100 {
		t.Errorf("PORT override ignored: %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.Workers != 4 || cfg.Session.TTL != 30*time.Minute {
		t.Errorf("file values lost: %+v %+v", cfg.HTTP, cfg.Session)
	}
	if cfg.Session.Backend != "redis" {
		t.Errorf("REDIS_URL should select redis, got %q", cfg.Session.Backend)
	}
	if cfg.Bot.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Bot.Token)
	}
	if len(cfg.AI.BaseURLs) != 2 {
		t.Errorf("base urls = %v", cfg.AI.BaseURLs)
	}
}

func TestLoadConfig_RejectsDuplicateWarehouse(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
catalog:
  warehouses:
    - {code: US, hub: US1}
    - {code: us, hub: US2}
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("expected duplicate warehouse error")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatal(err)
	}
	err = cfg.Validate()
	if !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("Validate() = %v, want ErrMissingCredentials", err)
	}

	cfg.Bot.Token = "t"
	cfg.AI.DeploymentToken = "d"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("complete config: %v", err)
	}

	cfg.Bot.Token = ""
	cfg.Runtime.Dev = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dev mode should skip validation: %v", err)
	}
}

func TestExampleConfigKeepsSessionsWithoutExpiry(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join("..", "..", "config.example.yaml"), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Session.TTL != 0 {
		t.Fatalf("example session ttl = %v, want 0", cfg.Session.TTL)
	}
	if cfg.Session.Backend != "memory" || cfg.HTTP.Workers != 8 {
		t.Fatalf("example parsed as %+v %+v", cfg.Session, cfg.HTTP)
	}
}
