// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"qwintry-bot/internal/domain"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token         string `yaml:"token"`
	APIEndpoint   string `yaml:"api_endpoint"` // defaults to tgbotapi.APIEndpoint
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`
	Language      string `yaml:"language"`   // ru | en
	RateLimit     int    `yaml:"rate_limit"` // updates per chat per minute, redis only
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	WebhookPath    string        `yaml:"webhook_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Workers        int           `yaml:"workers"` // >0 enables async update processing
}

type AdminConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	Backend       string        `yaml:"backend"` // memory | redis
	TTL           time.Duration `yaml:"ttl"`     // 0 keeps sessions until completion
	SweepInterval time.Duration `yaml:"sweep_interval"`
	HistoryLimit  int           `yaml:"history_limit"`
}

type AIConfig struct {
	BaseURLs        []string      `yaml:"base_urls"`
	DeploymentID    string        `yaml:"deployment_id"`
	DeploymentToken string        `yaml:"deployment_token"`
	Timeout         time.Duration `yaml:"timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
}

type ShippingConfig struct {
	BaseURLs           []string      `yaml:"base_urls"`
	CatalogURL         string        `yaml:"catalog_url"` // empty disables remote country/city lookup
	Timeout            time.Duration `yaml:"timeout"`
	RPS                float64       `yaml:"rps"`
	CatalogTTL         time.Duration `yaml:"catalog_ttl"`
	MaxWeight          string        `yaml:"max_weight"`
	Dimensions         Dimensions    `yaml:"dimensions"`
	AcceptFreeTextCity bool          `yaml:"accept_free_text_city"`
}

// Dimensions are the placeholder package sizes sent with every calculation, in cm.
type Dimensions struct {
	Length string `yaml:"length"`
	Width  string `yaml:"width"`
	Height string `yaml:"height"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Admin    AdminConfig    `yaml:"admin"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	AI       AIConfig       `yaml:"ai"`
	Shipping ShippingConfig `yaml:"shipping"`
	Catalog  CatalogConfig  `yaml:"catalog"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	DefaultAIBaseURL       = "https://apps.abacus.ai/api/getChatResponse"
	DefaultAIDeploymentID  = "1413dbc596"
	DefaultShippingBaseURL = "https://q3-api.qwintry.com/ru/frontend/calculator/calculate"
)

// LoadConfig reads the YAML file at path (a missing file is not an error),
// applies environment overrides and fills defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Catalog.check(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setStr(&cfg.Bot.Token, "TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Bot.WebhookSecret, "TELEGRAM_WEBHOOK_SECRET")
	setStr(&cfg.Bot.WebhookURL, "TELEGRAM_WEBHOOK_URL")
	setStr(&cfg.AI.DeploymentToken, "ABACUS_DEPLOYMENT_TOKEN")
	setStr(&cfg.AI.DeploymentID, "ABACUS_DEPLOYMENT_ID")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setStr(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")
	setStr(&cfg.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = p
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "ru"
	}
	if cfg.Bot.RateLimit <= 0 {
		cfg.Bot.RateLimit = 30
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.WebhookPath == "" {
		cfg.HTTP.WebhookPath = "/telegram/webhook"
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 60 * time.Second
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 24 * time.Hour
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "memory"
		if cfg.Redis.URL != "" {
			cfg.Session.Backend = "redis"
		}
	}
	if cfg.Session.SweepInterval <= 0 {
		cfg.Session.SweepInterval = time.Minute
	}
	if cfg.Session.HistoryLimit <= 0 {
		cfg.Session.HistoryLimit = 20
	}
	if len(cfg.AI.BaseURLs) == 0 {
		cfg.AI.BaseURLs = []string{DefaultAIBaseURL}
	}
	if cfg.AI.DeploymentID == "" {
		cfg.AI.DeploymentID = DefaultAIDeploymentID
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if len(cfg.Shipping.BaseURLs) == 0 {
		cfg.Shipping.BaseURLs = []string{DefaultShippingBaseURL}
	}
	if cfg.Shipping.Timeout <= 0 {
		cfg.Shipping.Timeout = 15 * time.Second
	}
	if cfg.Shipping.RPS <= 0 {
		cfg.Shipping.RPS = 5
	}
	if cfg.Shipping.CatalogTTL <= 0 {
		cfg.Shipping.CatalogTTL = 10 * time.Minute
	}
	if cfg.Shipping.MaxWeight == "" {
		cfg.Shipping.MaxWeight = "50"
	}
	if cfg.Shipping.Dimensions == (Dimensions{}) {
		cfg.Shipping.Dimensions = Dimensions{Length: "10", Width: "10", Height: "10"}
	}
	if len(cfg.Catalog.Warehouses) == 0 {
		cfg.Catalog.Warehouses = DefaultWarehouses()
	}
	if len(cfg.Catalog.Countries) == 0 {
		cfg.Catalog.Countries = DefaultCountries()
	}
}

// Validate reports missing credentials. The webhook refuses to process
// updates while it returns an error; dev mode runs with noop adapters instead.
func (c *Config) Validate() error {
	if c.Runtime.Dev {
		return nil
	}
	var missing []string
	if c.Bot.Token == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.AI.DeploymentToken == "" {
		missing = append(missing, "ABACUS_DEPLOYMENT_TOKEN")
	}
	if c.AI.DeploymentID == "" {
		missing = append(missing, "ABACUS_DEPLOYMENT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}
