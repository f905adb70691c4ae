package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ogri-la/gear-journey-go/src/cache"
	"github.com/ogri-la/gear-journey-go/src/retry"
)

// Store backends
const (
	MemoryBackend   = "memory"
	RedisBackend    = "redis"
	PostgresBackend = "postgres"
)

var ValidBackends = []string{MemoryBackend, RedisBackend, PostgresBackend}

// Config holds all configuration for the planner
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Catalogue CatalogueConfig   `yaml:"catalogue"`
	Upstream  UpstreamConfig    `yaml:"upstream"`
	Cache     cache.CacheConfig `yaml:"cache"`
	Retry     retry.Config      `yaml:"retry"`
	Store     StoreConfig       `yaml:"store"`
	LogLevel  string            `yaml:"log_level"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	BindAddress     string        `yaml:"bind_address"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// CatalogueConfig says where items.json comes from. A non-empty Path wins over URL.
type CatalogueConfig struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
}

// UpstreamConfig holds the game-data site settings
type UpstreamConfig struct {
	WowheadBase    string `yaml:"wowhead_base"`
	CDNBase        string `yaml:"cdn_base"`
	AssetBase      string `yaml:"asset_base"`
	DisplayIDBase  string `yaml:"display_id_base"`
	UserAgent      string `yaml:"user_agent"`
	Referer        string `yaml:"referer"`
	ProbeSlotPaths bool   `yaml:"probe_slot_paths"`
}

// StoreConfig selects and configures the selection list persistence
type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	ListName string         `yaml:"list_name"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
}

// RedisConfig holds redis connection parameters
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig holds PostgreSQL connection parameters
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns a Config with working defaults
func Default() Config {
	return Config{
		Server: ServerConfig{
			BindAddress:     "127.0.0.1",
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalogue: CatalogueConfig{
			Path: "data/items.json",
		},
		Upstream: UpstreamConfig{
			WowheadBase:    "https://www.wowhead.com/classic",
			CDNBase:        "https://wow.zamimg.com/modelviewer/classic/meta/armor",
			AssetBase:      "https://wow.zamimg.com",
			DisplayIDBase:  "http://127.0.0.1:3000/api/wowhead-display-id",
			UserAgent:      "gear-journey-go/0.1 (https://github.com/ogri-la/gear-journey-go)",
			Referer:        "https://www.wowhead.com/",
			ProbeSlotPaths: true,
		},
		Cache: cache.CacheConfig{
			Directory:       "cache",
			DefaultTTLHours: 24,
			ItemTTLHours:    24 * 7,
		},
		Retry: retry.DefaultConfig(),
		Store: StoreConfig{
			Backend:  MemoryBackend,
			ListName: "default",
			Redis: RedisConfig{
				Addr: "127.0.0.1:6379",
			},
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "gear",
				Password: "gear",
				DBName:   "gear_journey",
				SSLMode:  "disable",
			},
		},
		LogLevel: "info",
	}
}

// Load loads config from a YAML file over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values a YAML file can get wrong
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Catalogue.URL == "" && c.Catalogue.Path == "" {
		return fmt.Errorf("catalogue needs a url or a path")
	}
	valid := false
	for _, backend := range ValidBackends {
		if c.Store.Backend == backend {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("store.backend must be one of %v, got %q", ValidBackends, c.Store.Backend)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1")
	}
	return nil
}
