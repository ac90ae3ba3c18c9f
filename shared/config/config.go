package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	API       API       `yaml:"api"`
	Server    Server    `yaml:"server"`
	Status    Status    `yaml:"status"`
	Session   Session   `yaml:"session"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Log       Log       `yaml:"log"`
}

type API struct {
	BaseURL string `yaml:"base_url" env:"ACTIVITIES_API_URL" validate:"required,url"`
	// Timeout of 0 leaves outbound requests to the transport's own limits.
	Timeout time.Duration `yaml:"timeout" env:"ACTIVITIES_API_TIMEOUT" validate:"gte=0"`
}

type Server struct {
	Port          string        `yaml:"port" env:"PORT" validate:"required,numeric"`
	SecureCookies bool          `yaml:"secure_cookies" env:"SECURE_COOKIES"`
	ReadTimeout   time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout  time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" validate:"gt=0"`
}

type Status struct {
	HideAfter time.Duration `yaml:"hide_after" env:"STATUS_HIDE_AFTER" validate:"gt=0"`
}

type Session struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" env:"SESSION_IDLE_TTL" validate:"gt=0"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" validate:"gt=0"`
	// MaxSessions caps the documents held; the least recently used one is
	// closed to make room.
	MaxSessions int `yaml:"max_sessions" env:"SESSION_MAX" validate:"gt=0"`
}

// RateLimit bounds the page loads and event posts one client address may
// send, and the event posts of all clients together.
type RateLimit struct {
	PagesPerSecond  float64 `yaml:"pages_per_second" env:"RATE_LIMIT_PAGES_PER_SECOND" validate:"gt=0"`
	PagesBurst      float64 `yaml:"pages_burst" env:"RATE_LIMIT_PAGES_BURST" validate:"gte=1"`
	EventsPerSecond float64 `yaml:"events_per_second" env:"RATE_LIMIT_EVENTS_PER_SECOND" validate:"gt=0"`
	EventsBurst     float64 `yaml:"events_burst" env:"RATE_LIMIT_EVENTS_BURST" validate:"gte=1"`
	GlobalPerSecond float64 `yaml:"global_per_second" env:"RATE_LIMIT_GLOBAL_PER_SECOND" validate:"gt=0"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json" env:"LOG_JSON"`
}

// Default is the configuration used for every field the file and the
// environment leave unset.
func Default() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:8000",
		},
		Server: Server{
			Port:         "8081",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Status: Status{
			HideAfter: 5 * time.Second,
		},
		Session: Session{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   1000,
		},
		RateLimit: RateLimit{
			PagesPerSecond:  1,
			PagesBurst:      20,
			EventsPerSecond: 2,
			EventsBurst:     10,
			GlobalPerSecond: 100,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load layers defaults, the yaml file at path (skipped when path is empty)
// and environment variables, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
