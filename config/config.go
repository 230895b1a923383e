package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Source     SourceConfig     `yaml:"source"`
	Sync       SyncConfig       `yaml:"sync"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// SourceConfig describes how to reach the usage-tracking agent.
type SourceConfig struct {
	StatsURL  string            `yaml:"stats_url"`
	EventsURL string            `yaml:"events_url"`
	LabelsURL string            `yaml:"labels_url"`
	Headers   map[string]string `yaml:"headers"`
	PageSize  int               `yaml:"page_size"`
	HTTPProxy string            `yaml:"http_proxy"`

	LabelCacheTTLSeconds int `yaml:"label_cache_ttl_seconds"`
}

// SyncConfig holds the sync cycle configuration.
type SyncConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	LookbackSeconds int           `yaml:"lookback_seconds"`
	Lookback        time.Duration `yaml:"-"` // Ignored by YAML parser
	DeviceID        string        `yaml:"device_id"`
	UserID          string        `yaml:"user_id"`
	Mode            string        `yaml:"mode"` // "stats" or "events"
	Timezone        string        `yaml:"timezone"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "sqlite"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Sync.IntervalSeconds <= 0 {
		cfg.Sync.IntervalSeconds = 900
	}
	cfg.Sync.Interval = time.Duration(cfg.Sync.IntervalSeconds) * time.Second

	if cfg.Sync.LookbackSeconds <= 0 {
		cfg.Sync.LookbackSeconds = 3600
	}
	cfg.Sync.Lookback = time.Duration(cfg.Sync.LookbackSeconds) * time.Second

	if cfg.Sync.Mode == "" {
		cfg.Sync.Mode = "stats"
	}

	if cfg.Sync.DeviceID == "" {
		hostname, err := os.Hostname()
		if err != nil {
			log.Printf("sync.device_id is not set and hostname lookup failed: %v", err)
			hostname = "unknown-device"
		}
		cfg.Sync.DeviceID = hostname
	}

	if cfg.Source.PageSize <= 0 {
		cfg.Source.PageSize = 100
	}

	if cfg.Source.LabelCacheTTLSeconds <= 0 {
		cfg.Source.LabelCacheTTLSeconds = 3600
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
