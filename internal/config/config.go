package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects the store implementation.
const (
	BackendMemory      = "memory"
	BackendFile        = "file"
	BackendDistributed = "distributed"
)

// Config is the surface consumed by the caching core. Values come from an
// optional YAML file with environment-variable overrides on top.
type Config struct {
	Backend         string        `yaml:"backend"`
	TTLSeconds      int           `yaml:"ttl_seconds"`
	MaxEntries      int           `yaml:"max_entries"`
	Directory       string        `yaml:"directory"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	MaxPayloadBytes int           `yaml:"max_payload_bytes"`
	Redis           RedisConfig   `yaml:"redis"`
	Prices          PriceTable    `yaml:"price_table"`
}

// RedisConfig locates the shared key-value service for the distributed
// backend.
type RedisConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Addr returns the host:port endpoint.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// ModelPrice is the per-token cost of a model, split by direction.
type ModelPrice struct {
	InputPerToken  float64 `yaml:"input_per_token"`
	OutputPerToken float64 `yaml:"output_per_token"`
}

// PriceTable maps model identifiers to per-token prices.
type PriceTable map[string]ModelPrice

// Cost prices a completion's token usage. Unknown models cost zero.
func (t PriceTable) Cost(model string, inputTokens, outputTokens int) float64 {
	price, ok := t[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)*price.InputPerToken + float64(outputTokens)*price.OutputPerToken
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend:         BackendMemory,
		TTLSeconds:      1800,
		MaxEntries:      1024,
		Directory:       ".promptcache",
		SweepInterval:   5 * time.Minute,
		MaxPayloadBytes: 1 << 20,
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      "6379",
			KeyPrefix: "promptcache:",
		},
		Prices: PriceTable{},
	}
}

// Load builds a Config from defaults, an optional YAML file, and the
// environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and nonsensical limits.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendFile, BackendDistributed:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	if c.TTLSeconds <= 0 {
		return fmt.Errorf("ttl_seconds must be positive, got %d", c.TTLSeconds)
	}
	if c.Backend == BackendMemory && c.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be positive, got %d", c.MaxEntries)
	}
	return nil
}

// DefaultTTL returns the configured default TTL as a duration.
func (c *Config) DefaultTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c *Config) applyEnv() {
	c.Backend = getEnv("PROMPTCACHE_BACKEND", c.Backend)
	c.TTLSeconds = getEnvInt("PROMPTCACHE_TTL_SECONDS", c.TTLSeconds)
	c.MaxEntries = getEnvInt("PROMPTCACHE_MAX_ENTRIES", c.MaxEntries)
	c.Directory = getEnv("PROMPTCACHE_DIR", c.Directory)
	c.MaxPayloadBytes = getEnvInt("PROMPTCACHE_MAX_PAYLOAD_BYTES", c.MaxPayloadBytes)
	if v := os.Getenv("PROMPTCACHE_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SweepInterval = d
		}
	}

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", c.Redis.KeyPrefix)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
