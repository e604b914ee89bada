// Package config loads and validates the application configuration from
// layered sources: built-in defaults, an optional YAML file, and environment
// variables, in increasing priority.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables read by Load, e.g.
// JOBLY_DATABASE_HOST maps to database.host.
const envPrefix = "JOBLY_"

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration file (config.yaml, optional)
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// YAML file is optional; absence is not an error.
	_ = k.Load(file.Provider("config.yaml"), yaml.Parser())

	if err := loadEnv(k); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

// LoadBytes builds a configuration from defaults overlaid with the given raw
// YAML document. Environment variables are not consulted.
func LoadBytes(doc []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(rawbytes.Provider(doc), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config document: %w", err)
	}

	return unmarshal(k)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":  "jobly",
		"app.env":   EnvDevelopment,
		"app.debug": false,

		"database.host":                 "localhost",
		"database.port":                 5432,
		"database.database":             "jobly",
		"database.username":             "jobly",
		"database.ssl_mode":             "disable",
		"database.max_conns":            10,
		"database.max_idle_conns":       5,
		"database.conn_max_lifetime":    "30m",
		"database.conn_max_idle_time":   "5m",
		"database.slow_query_threshold": "200ms",

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// JOBLY_DATABASE_MAX_CONNS -> database.max.conns would be
			// wrong, so only the first underscore becomes a separator;
			// the remainder keeps underscores for multi-word keys.
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			section, rest, found := strings.Cut(key, "_")
			if !found {
				return key, value
			}
			return section + "." + rest, value
		},
	}), nil)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
