package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Store     StoreConfig      `mapstructure:"store"`
	Redis     RedisConfig      `mapstructure:"redis"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	AI        AIConfig         `mapstructure:"ai"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port    string   `mapstructure:"port"`
	Env     string   `mapstructure:"env"`
	APIKeys []string `mapstructure:"api_keys"`
}

type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// AIConfig governs the cascade and the caches around it.
type AIConfig struct {
	// DefaultAPIType is the primary backend when no selection is persisted.
	DefaultAPIType string `mapstructure:"default_api_type"`

	// FallbackOrder is the cross-provider priority used once the primary is
	// exhausted. Registered providers absent from the list are tried after
	// the listed ones.
	FallbackOrder []string `mapstructure:"fallback_order"`

	// AttemptTimeout bounds each individual provider/model call.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`

	// CacheTTL is the expiry window for diagram and node-expansion caches.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// SweepInterval is how often invalid history records are purged.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ProviderConfig describes one AI backend.
type ProviderConfig struct {
	Type     string `mapstructure:"type" validate:"required"`
	Name     string `mapstructure:"name"`
	APIKey   string `mapstructure:"api_key" validate:"required"`
	Endpoint string `mapstructure:"endpoint"`

	// Model is the primary model; FallbackModels is the intra-provider
	// cascade tried after it, in order.
	Model          string   `mapstructure:"model"`
	FallbackModels []string `mapstructure:"fallback_models"`

	MaxTokens   int      `mapstructure:"max_tokens"`
	Temperature *float64 `mapstructure:"temperature"`

	// Client-identifying headers, used by OpenRouter.
	SiteURL  string `mapstructure:"site_url"`
	SiteName string `mapstructure:"site_name"`

	// Extra holds adapter-specific settings (for example the pixtral model
	// name for mistral).
	Extra map[string]string `mapstructure:"extra"`
}

// Configured reports whether the provider has a usable key.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("store.dsn", "file:lazydog.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("ai.default_api_type", "openrouter")
	v.SetDefault("ai.fallback_order", []string{"gemini", "mistral", "glm", "xai"})
	v.SetDefault("ai.attempt_timeout", 30*time.Second)
	v.SetDefault("ai.cache_ttl", 24*time.Hour)
	v.SetDefault("ai.sweep_interval", 10*time.Minute)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}

	// Resolve API Keys
	for i, p := range cfg.Providers {
		if strings.HasPrefix(p.APIKey, "ENV:") {
			envVar := strings.TrimPrefix(p.APIKey, "ENV:")
			// Check process environment first (explicit override)
			val := os.Getenv(envVar)
			if val == "" {
				val = v.GetString(envVar)
			}
			cfg.Providers[i].APIKey = val
		}
	}

	return &cfg, nil
}

// DefaultProviders returns the built-in backend roster. Keys resolve through
// the ENV: indirection so an unset variable simply leaves the provider
// unconfigured and the cascade skips it.
func DefaultProviders() []ProviderConfig {
	temp07 := 0.7
	temp0 := 0.0

	return []ProviderConfig{
		{
			Type:     "openrouter",
			Name:     "OpenRouter",
			APIKey:   "ENV:OPENROUTER_API_KEY",
			Endpoint: "https://openrouter.ai/api/v1/chat/completions",
			Model:    "nvidia/llama-3.1-nemotron-ultra-253b-v1:free",
			FallbackModels: []string{
				"deepseek/deepseek-r1:free",
				"qwen/qwen-2.5-7b-instruct:free",
				"nvidia/llama-3.3-nemotron-super-49b-v1:free",
				"deepseek/deepseek-chat-v3-0324:free",
			},
			MaxTokens:   1000,
			Temperature: &temp07,
			SiteURL:     "https://lazydog-app.com",
			SiteName:    "LazyDog Speech Recognition",
		},
		{
			Type:     "gemini",
			Name:     "Google Gemini",
			APIKey:   "ENV:GEMINI_API_KEY",
			Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-8b:generateContent",
		},
		{
			Type:        "mistral",
			Name:        "Mistral",
			APIKey:      "ENV:MISTRAL_API_KEY",
			Endpoint:    "https://api.mistral.ai/v1/chat/completions",
			Model:       "mistral-small-latest",
			MaxTokens:   1000,
			Temperature: &temp07,
			Extra:       map[string]string{"pixtral_model": "pixtral-12b-2409"},
		},
		{
			Type:        "glm",
			Name:        "GLM",
			APIKey:      "ENV:GLM_API_KEY",
			Endpoint:    "https://open.bigmodel.cn/api/paas/v4/chat/completions",
			Model:       "glm-4-flash",
			MaxTokens:   200,
			Temperature: &temp07,
		},
		{
			Type:        "xai",
			Name:        "xAI Grok",
			APIKey:      "ENV:XAI_API_KEY",
			Endpoint:    "https://api.x.ai/v1/chat/completions",
			Model:       "grok-3-mini-beta",
			Temperature: &temp0,
		},
	}
}
