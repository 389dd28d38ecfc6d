// Package config loads the service settings with koanf from built-in
// defaults, YAML profiles under configs/ and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultServerPort = 3000

	// DefaultMaxRequestSize caps quote request bodies at 1 MiB.
	DefaultMaxRequestSize = 1 << 20

	// DefaultDatabaseMaxConns is the fixed size of the shared connection pool.
	DefaultDatabaseMaxConns = 5

	// Rolling log file retention.
	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28
)

// Process-supervisor variables. These are read without the APP_ prefix and
// take precedence over every other source.
const (
	EnvPort        = "PORT"
	EnvDatabaseURL = "DATABASE_URL"

	envPrefix = "APP_"
)

// Config is every setting the service reads at startup.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
}

// AppConfig identifies the running build.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`

	// RequestTimeout bounds each API request's context. Zero disables it.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"min=0"`
}

type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig mirrors JSON logs to a lumberjack rolling file.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig configures the OTLP gRPC exporters.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// DatabaseConfig contains the relational store settings.
type DatabaseConfig struct {
	// URL selects the driver by scheme: postgres:// or postgresql:// for
	// PostgreSQL, sqlite:// or file: for the embedded development store.
	URL string `koanf:"url" validate:"required"`

	MaxConns       int32         `koanf:"max_conns"       validate:"required,min=1,max=100"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"required,min=100ms"`

	// TraceSQL logs every statement at trace level. Noisy; meant for local use.
	TraceSQL bool `koanf:"trace_sql"`
}

// Addr returns the host:port the HTTP server listens on.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// database.url has no default. Startup fails until DATABASE_URL provides it.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quote-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,
		"server.request_timeout":  "0s",

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quote-service",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"database.max_conns":       DefaultDatabaseMaxConns,
		"database.connect_timeout": "10s",
		"database.trace_sql":       false,
	}
}

// Load merges every configuration source into a Config. Later sources win:
//
//	defaults < configs/base.yaml < configs/{profile}.yaml < APP_* < PORT, DATABASE_URL
//
// Missing files are skipped. Load does not validate; call Validate.
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	for _, path := range configFiles(profile) {
		if err := loadFileIfExists(k, path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", prefixedEnvKey), nil); err != nil {
		return nil, fmt.Errorf("loading %s* env vars: %w", envPrefix, err)
	}

	if err := k.Load(env.ProviderWithValue("", ".", supervisorEnv), nil); err != nil {
		return nil, fmt.Errorf("loading %s and %s: %w", EnvPort, EnvDatabaseURL, err)
	}

	cfg := new(Config)
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// configFiles lists the YAML files read for profile, lowest precedence first.
func configFiles(profile string) []string {
	files := []string{"configs/base.yaml"}
	if profile != "" {
		files = append(files, "configs/"+profile+".yaml")
	}

	return files
}

// prefixedEnvKey turns APP_DATABASE_URL into database.url. Keys whose
// final segment holds an underscore (max_conns) cannot be set this way.
func prefixedEnvKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "_", ".")
}

// supervisorEnv maps PORT and DATABASE_URL onto their config keys.
// Every other variable, and any empty value, is skipped.
func supervisorEnv(key, value string) (string, any) {
	if value == "" {
		return "", nil
	}

	switch key {
	case EnvPort:
		return "server.port", value
	case EnvDatabaseURL:
		return "database.url", value
	default:
		return "", nil
	}
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
