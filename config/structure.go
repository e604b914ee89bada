package config

import (
	"time"
)

// Config is the root configuration for the job-board backend.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `koanf:"name"`
	Env   string `koanf:"env"`
	Debug bool   `koanf:"debug"`
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxConns        int32         `koanf:"max_conns"`
	MaxIdleConns    int32         `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`

	// SlowQueryThreshold is the duration above which a statement is logged
	// at warn level.
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`

	// ConnectionString overrides the individual host/port/credential fields
	// when set.
	ConnectionString string `koanf:"connection_string"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}
