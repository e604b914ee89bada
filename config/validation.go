package config

import (
	"fmt"
	"slices"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Validate checks the configuration section by section and returns the first
// violation found.
func Validate(cfg *Config) error {
	if err := validateApp(&cfg.App); err != nil {
		return fmt.Errorf("app config: %w", err)
	}

	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

func validateApp(cfg *AppConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("app name is required")
	}

	validEnvs := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(validEnvs, cfg.Env) {
		return fmt.Errorf("app env must be one of %v, got %q", validEnvs, cfg.Env)
	}

	return nil
}

func validateDatabase(cfg *DatabaseConfig) error {
	if cfg.ConnectionString != "" {
		// A full DSN supersedes the individual fields.
		return nil
	}

	if cfg.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("database port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if cfg.MaxConns <= 0 {
		return fmt.Errorf("database max_conns must be positive, got %d", cfg.MaxConns)
	}

	if cfg.MaxIdleConns < 0 || cfg.MaxIdleConns > cfg.MaxConns {
		return fmt.Errorf("database max_idle_conns must be between 0 and max_conns, got %d", cfg.MaxIdleConns)
	}

	if cfg.SlowQueryThreshold <= 0 {
		return fmt.Errorf("database slow_query_threshold must be positive, got %s", cfg.SlowQueryThreshold)
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	if !slices.Contains(validLevels, cfg.Level) {
		return fmt.Errorf("log level must be one of %v, got %q", validLevels, cfg.Level)
	}

	return nil
}
