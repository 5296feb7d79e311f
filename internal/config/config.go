package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AuthConfig struct {
	// JWTSecret verifies the bearer tokens issued by the hosted auth
	// provider (HS256). The provider itself is external to this service.
	JWTSecret string `yaml:"jwt_secret"`
	// AdminAPIKey guards the moderation endpoints.
	AdminAPIKey string `yaml:"admin_api_key"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	// GatewayKey/GatewayBaseURL target an OpenAI-compatible
	// chat/completions gateway. When GatewayKey is empty and GeminiKey is
	// set, the Gemini SDK is used directly.
	GatewayKey     string `yaml:"gateway_key"`
	GatewayBaseURL string `yaml:"gateway_base_url"`
	GeminiKey      string `yaml:"gemini_key"`
	GeminiURL      string `yaml:"gemini_url"`
	DefaultModel   string `yaml:"default_model"`
}

type StorageConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

type PremiumConfig struct {
	// OperatorWhatsApp is the number behind the wa.me deep link the mint
	// endpoint hands back for out-of-band payment confirmation.
	OperatorWhatsApp string `yaml:"operator_whatsapp"`
	// ChatRatePerMinute bounds conversational turns per user.
	ChatRatePerMinute int `yaml:"chat_rate_per_minute"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Storage  StorageConfig  `yaml:"storage"`
	Premium  PremiumConfig  `yaml:"premium"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "google/gemini-2.5-flash"
	}
	if cfg.Premium.OperatorWhatsApp == "" {
		cfg.Premium.OperatorWhatsApp = "244922600720"
	}
	if cfg.Premium.ChatRatePerMinute <= 0 {
		cfg.Premium.ChatRatePerMinute = 20
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Minute
	}
	return d
}
