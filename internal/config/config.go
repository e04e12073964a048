package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/technosupport/ts-sentinel/internal/classify"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	DB struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"db"`

	Redis struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"redis"`

	NATS struct {
		Enabled         bool   `yaml:"enabled"`
		URL             string `yaml:"url"`
		Subject         string `yaml:"subject"`
		PublishRetryMax int    `yaml:"publish_retry_max"`
	} `yaml:"nats"`

	Thresholds classify.Thresholds `yaml:"density_thresholds"`

	Generator struct {
		EventMinMs int `yaml:"event_min_ms"`
		EventMaxMs int `yaml:"event_max_ms"`
		CrowdMinMs int `yaml:"crowd_min_ms"`
		CrowdMaxMs int `yaml:"crowd_max_ms"`
	} `yaml:"generator"`

	Crowd struct {
		BufferSize      int `yaml:"buffer_size"`
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"crowd"`

	Broadcast struct {
		SubscriberBuffer int `yaml:"subscriber_buffer"`
		DedupMaxKeys     int `yaml:"dedup_max_keys"`
		DedupTTLSeconds  int `yaml:"dedup_ttl_seconds"`
	} `yaml:"broadcast"`
}

// Load reads the yaml file if present, then applies env overrides and
// defaults. A missing file is not an error; env + defaults suffice.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overlay(&c.DB.Host, "DB_HOST")
	overlay(&c.DB.Port, "DB_PORT")
	overlay(&c.DB.User, "DB_USER")
	overlay(&c.DB.Password, "DB_PASSWORD")
	overlay(&c.DB.Name, "DB_NAME")
	overlay(&c.DB.SSLMode, "DB_SSLMODE")
	overlay(&c.Redis.Addr, "REDIS_ADDR")
	overlay(&c.NATS.URL, "NATS_URL")
	overlay(&c.LogLevel, "LOG_LEVEL")

	if port := os.Getenv("PORT"); port != "" {
		c.HTTP.Addr = ":" + port
	}
}

func overlay(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.DB.Host == "" {
		c.DB.Host = "localhost"
	}
	if c.DB.Port == "" {
		c.DB.Port = "5432"
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "sentinel.detections"
	}
	if c.NATS.PublishRetryMax == 0 {
		c.NATS.PublishRetryMax = 2
	}
	if !c.Thresholds.Valid() {
		c.Thresholds = classify.DefaultThresholds
	}
	if c.Generator.EventMinMs == 0 {
		c.Generator.EventMinMs = 10000
	}
	if c.Generator.EventMaxMs == 0 {
		c.Generator.EventMaxMs = 45000
	}
	if c.Generator.CrowdMinMs == 0 {
		c.Generator.CrowdMinMs = 3000
	}
	if c.Generator.CrowdMaxMs == 0 {
		c.Generator.CrowdMaxMs = 8000
	}
	if c.Crowd.BufferSize == 0 {
		c.Crowd.BufferSize = 100
	}
	if c.Crowd.CacheTTLSeconds == 0 {
		c.Crowd.CacheTTLSeconds = 30
	}
	if c.Broadcast.SubscriberBuffer == 0 {
		c.Broadcast.SubscriberBuffer = 16
	}
	if c.Broadcast.DedupMaxKeys == 0 {
		c.Broadcast.DedupMaxKeys = 1024
	}
	if c.Broadcast.DedupTTLSeconds == 0 {
		c.Broadcast.DedupTTLSeconds = 60
	}
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) EventInterval() (time.Duration, time.Duration) {
	return time.Duration(c.Generator.EventMinMs) * time.Millisecond,
		time.Duration(c.Generator.EventMaxMs) * time.Millisecond
}

func (c *Config) CrowdInterval() (time.Duration, time.Duration) {
	return time.Duration(c.Generator.CrowdMinMs) * time.Millisecond,
		time.Duration(c.Generator.CrowdMaxMs) * time.Millisecond
}
