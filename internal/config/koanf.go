package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an explicit YAML file.
const ConfigPathEnvVar = "TRACKFINDER_CONFIG"

// DefaultConfigPaths are searched when ConfigPathEnvVar is unset.
var DefaultConfigPaths = []string{
	"trackfinder.yaml",
	"trackfinder.yml",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Catalog: CatalogConfig{
			Path: "spotify_songs.db",
		},
		Store: StoreConfig{
			Dir: "songs",
		},
		Search: SearchConfig{
			DefaultNeighbors: 150,
			MaxNeighbors:     300,
			ExcludeSeeds:     false,
		},
		Session: SessionConfig{
			TTL:             2 * time.Hour,
			ClearCartOnSave: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load layers defaults, the config file (if any) and the environment, then
// validates the result.
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit file path. An empty path skips the file
// layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("TRACKFINDER_", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"trackfinder_host":               "server.host",
	"trackfinder_port":               "server.port",
	"trackfinder_read_timeout":       "server.read_timeout",
	"trackfinder_write_timeout":      "server.write_timeout",
	"trackfinder_shutdown_timeout":   "server.shutdown_timeout",
	"trackfinder_rate_limit_reqs":    "server.rate_limit_reqs",
	"trackfinder_rate_limit_window":  "server.rate_limit_window",
	"trackfinder_cors_origins":       "server.cors_origins",
	"trackfinder_catalog_path":       "catalog.path",
	"trackfinder_store_dir":          "store.dir",
	"trackfinder_default_neighbors":  "search.default_neighbors",
	"trackfinder_max_neighbors":      "search.max_neighbors",
	"trackfinder_exclude_seeds":      "search.exclude_seeds",
	"trackfinder_session_ttl":        "session.ttl",
	"trackfinder_clear_cart_on_save": "session.clear_cart_on_save",
	"trackfinder_log_level":          "logging.level",
	"trackfinder_log_format":         "logging.format",
	"trackfinder_log_caller":         "logging.caller",
}

// envTransformFunc maps TRACKFINDER_* variables to config paths. Unknown
// variables map to "" and are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
