package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
		QueueKey string `yaml:"queue_key"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL       string `yaml:"ttl"`
		Budget    int    `yaml:"budget_seconds"`
		Tick      string `yaml:"tick"`
		Retention string `yaml:"retention"`
	} `yaml:"quiz"`
	Submit struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"submit"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// BudgetSeconds returns the configured quiz budget, or fallback when unset.
func (c Config) BudgetSeconds(fallback int) int {
	if c.Quiz.Budget > 0 {
		return c.Quiz.Budget
	}
	return fallback
}
