// Package config loads trackfinder settings from defaults, an optional YAML
// file and TRACKFINDER_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/ewilliams-labs/trackfinder/internal/logging"
	"github.com/ewilliams-labs/trackfinder/internal/validation"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Catalog CatalogConfig `koanf:"catalog"`
	Store   StoreConfig   `koanf:"store"`
	Search  SearchConfig  `koanf:"search"`
	Session SessionConfig `koanf:"session"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type CatalogConfig struct {
	// Path is the SQLite file holding the spotify_songs table.
	Path string `koanf:"path" validate:"required"`
}

type StoreConfig struct {
	// Dir holds one <user_id>.db partition per user.
	Dir string `koanf:"dir" validate:"required"`
}

type SearchConfig struct {
	DefaultNeighbors int  `koanf:"default_neighbors" validate:"min=1,ltefield=MaxNeighbors"`
	MaxNeighbors     int  `koanf:"max_neighbors" validate:"min=1"`
	ExcludeSeeds     bool `koanf:"exclude_seeds"`
}

type SessionConfig struct {
	TTL             time.Duration `koanf:"ttl" validate:"gt=0"`
	ClearCartOnSave bool          `koanf:"clear_cart_on_save"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks struct constraints and the log level.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

// ToLogging converts to the logger's own config type.
func (l LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}
