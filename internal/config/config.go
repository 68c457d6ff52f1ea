// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the echonote service. Environment
// variables are parsed from the ECHONOTE_ prefix, e.g. ECHONOTE_HTTP_PORT.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLiteDir   string `envconfig:"SQLITE_DIR" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// OpenAI
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL" default:""`
	TranscribeModel string `envconfig:"TRANSCRIBE_MODEL" default:"whisper-1"`
	StructureModel  string `envconfig:"STRUCTURE_MODEL" default:"gpt-4.1-nano"`

	// Pipeline
	MinAudioBytes int `envconfig:"MIN_AUDIO_BYTES" default:"2000"`

	// Listing
	ListLimitMin     int `envconfig:"LIST_LIMIT_MIN" default:"1"`
	ListLimitDefault int `envconfig:"LIST_LIMIT_DEFAULT" default:"20"`
	ListLimitMax     int `envconfig:"LIST_LIMIT_MAX" default:"100"`
}

// ResolveDefaults validates driver selection and cross-field constraints.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.ListLimitMin < 1 || c.ListLimitMax < c.ListLimitMin {
		return fmt.Errorf("invalid list limit range [%d, %d]", c.ListLimitMin, c.ListLimitMax)
	}
	if c.ListLimitDefault < c.ListLimitMin || c.ListLimitDefault > c.ListLimitMax {
		return fmt.Errorf("LIST_LIMIT_DEFAULT %d outside [%d, %d]", c.ListLimitDefault, c.ListLimitMin, c.ListLimitMax)
	}
	return nil
}

// New creates a Config by parsing ECHONOTE_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("ECHONOTE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("transcribe_model", cfg.TranscribeModel).
		Str("structure_model", cfg.StructureModel).
		Bool("openai_key_present", cfg.OpenAIAPIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
