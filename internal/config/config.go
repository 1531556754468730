package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env    string `yaml:"env"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		ID  string `yaml:"id"`
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`
	Game struct {
		SessionLength      int    `yaml:"session_length"`
		ReshuffleEachRound bool   `yaml:"reshuffle_each_round"`
		IdleTTL            string `yaml:"idle_ttl"`
	} `yaml:"game"`
}

// Load reads YAML config from path. A missing file yields defaults; environment
// variables APP_ENV and DATABASE_URL override the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Postgres.URL = url
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Game.SessionLength < 0 {
		return cfg, fmt.Errorf("game.session_length must not be negative, got %d", cfg.Game.SessionLength)
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
