package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/pario-ai/namegen/pkg/models"
	"gopkg.in/yaml.v3"
)

// Config holds all namegen configuration.
type Config struct {
	Listen     string             `yaml:"listen" validate:"required"`
	DBPath     string             `yaml:"db_path"`
	Provider   ProviderConfig     `yaml:"provider"`
	Budget     BudgetConfig       `yaml:"budget"`
	Pricing    models.Tariff      `yaml:"pricing"`
	Generation GenerationConfig   `yaml:"generation"`
	Audit      models.AuditConfig `yaml:"audit"`
	Log        LogConfig          `yaml:"log"`
}

// ProviderConfig defines the upstream model provider.
// Type is "openai" (default) or "gemini". URL overrides the provider base URL.
type ProviderConfig struct {
	Type   string `yaml:"type" validate:"oneof=openai gemini"`
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// BudgetConfig controls per-scope spend ceilings.
type BudgetConfig struct {
	Daily    float64 `yaml:"daily" validate:"gt=0"`
	Monthly  float64 `yaml:"monthly" validate:"gt=0"`
	Timezone string  `yaml:"timezone"`
	// Store is "memory" (default), "sqlite" or "redis".
	Store string      `yaml:"store" validate:"oneof=memory sqlite redis"`
	Redis RedisConfig `yaml:"redis"`
	// PruneSchedule is a cron spec for dropping idle in-memory scopes.
	PruneSchedule string `yaml:"prune_schedule"`
}

// RedisConfig locates the shared ledger store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// GenerationConfig tunes upstream calls and batch throttling.
type GenerationConfig struct {
	Timeout         time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxOutputTokens int           `yaml:"max_output_tokens" validate:"gt=0"`
	Temperature     float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	TopP            float64       `yaml:"top_p" validate:"gt=0,lte=1"`
	BatchDelay      time.Duration `yaml:"batch_delay" validate:"gte=0"`
	MaxBatchSize    int           `yaml:"max_batch_size" validate:"gt=0"`
}

// LogConfig controls zap output.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Limits returns the budget ceilings.
func (b BudgetConfig) Limits() models.BudgetLimits {
	return models.BudgetLimits{Daily: b.Daily, Monthly: b.Monthly}
}

// Location resolves the reference timezone used for day and month windows.
func (b BudgetConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("budget timezone: %w", err)
	}
	return loc, nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "namegen.db",
		Provider: ProviderConfig{
			Type:  "openai",
			Model: "gpt-4o-mini",
		},
		Budget: BudgetConfig{
			Daily:         80,
			Monthly:       2000,
			Timezone:      "UTC",
			Store:         "memory",
			PruneSchedule: "@daily",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "namegen:budget",
			},
		},
		Pricing: models.Tariff{
			InputPer1K:   0.00015,
			OutputPer1K:  0.0006,
			MinCharge:    0.001,
			FlatEstimate: 0.05,
		},
		Generation: GenerationConfig{
			Timeout:         30 * time.Second,
			MaxOutputTokens: 1000,
			Temperature:     0.8,
			TopP:            0.9,
			BatchDelay:      time.Second,
			MaxBatchSize:    10,
		},
		Audit: models.AuditConfig{
			Enabled:       false,
			DBPath:        "namegen-audit.db",
			RetentionDays: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := models.Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Budget.Store == "redis" && c.Budget.Redis.Addr == "" {
		return fmt.Errorf("invalid config: budget.redis.addr is required when budget.store is redis")
	}
	if _, err := c.Budget.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
