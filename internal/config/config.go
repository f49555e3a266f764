package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

type Config struct {
	BaseURL     string        `env:"URSA_BASE_URL"     envDefault:"https://jsonplaceholder.typicode.com"`
	HTTPTimeout time.Duration `env:"URSA_HTTP_TIMEOUT" envDefault:"30s"`
	UserAgent   string        `env:"URSA_USER_AGENT"`
	LogLevel    string        `env:"URSA_LOG_LEVEL"    envDefault:"info"`
	LogFormat   string        `env:"URSA_LOG_FORMAT"   envDefault:"text"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must be http or https (URL = %s)", c.BaseURL)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP timeout must not be negative (timeout = %s)", c.HTTPTimeout)
	}

	if _, err = parseLevel(c.LogLevel); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format (format = %s)", c.LogFormat)
	}

	return nil
}

// NewLogger builds the process logger. Output goes to w so stdout stays
// free for command output.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(strings.TrimSpace(c.LogFormat), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("parse log level: %w", err)
	}

	return level, nil
}
