package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearSupervisorEnv blanks PORT and DATABASE_URL so the host environment
// cannot leak into assertions. Empty values are skipped by Load.
func clearSupervisorEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvPort, "")
	t.Setenv(EnvDatabaseURL, "")
}

// Tests run from the package directory, so configs/*.yaml is never found
// and Load sees only defaults and the environment.
func TestLoad_Defaults(t *testing.T) {
	clearSupervisorEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, AppConfig{Name: "quote-service", Version: "dev", Environment: "local"}, cfg.App)
	assert.Equal(t, ServerConfig{
		Port:            DefaultServerPort,
		Host:            "0.0.0.0",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		MaxRequestSize:  DefaultMaxRequestSize,
	}, cfg.Server)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, LogFileConfig{
		Path:       "./logs/app.log",
		MaxSizeMB:  DefaultLogFileMaxSizeMB,
		MaxBackups: DefaultLogFileMaxBackups,
		MaxAgeDays: DefaultLogFileMaxAgeDays,
		Compress:   true,
	}, cfg.Log.File)

	assert.Equal(t, TelemetryConfig{ServiceName: "quote-service", SamplingRate: 1.0, Insecure: true}, cfg.Telemetry)

	assert.Equal(t, DatabaseConfig{MaxConns: DefaultDatabaseMaxConns, ConnectTimeout: 10 * time.Second}, cfg.Database)
}

func TestLoad_MissingDatabaseURLFailsValidation(t *testing.T) {
	clearSupervisorEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
}

func TestLoad_Environment(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "supervisor variables",
			env:  map[string]string{EnvPort: "8081", EnvDatabaseURL: "postgres://quotes@db:5432/quotes"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8081, cfg.Server.Port)
				assert.Equal(t, "postgres://quotes@db:5432/quotes", cfg.Database.URL)
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name: "supervisor beats prefixed",
			env: map[string]string{
				"APP_SERVER_PORT":  "9090",
				"APP_DATABASE_URL": "postgres://prefixed/quotes",
				EnvPort:            "4000",
				EnvDatabaseURL:     "postgres://supervisor/quotes",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 4000, cfg.Server.Port)
				assert.Equal(t, "postgres://supervisor/quotes", cfg.Database.URL)
			},
		},
		{
			name: "empty PORT keeps default",
			env:  map[string]string{EnvPort: ""},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultServerPort, cfg.Server.Port)
			},
		},
		{
			name: "prefixed overrides",
			env: map[string]string{
				"APP_SERVER_PORT":       "9090",
				"APP_LOG_LEVEL":         "warn",
				"APP_TELEMETRY_ENABLED": "true",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "warn", cfg.Log.Level)
				assert.True(t, cfg.Telemetry.Enabled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSupervisorEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load("")
			require.NoError(t, err)

			tt.check(t, cfg)
		})
	}
}

func TestLoad_NonExistentProfile(t *testing.T) {
	clearSupervisorEnv(t)

	cfg, err := Load("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "quote-service", cfg.App.Name)
}

func TestConfigFiles(t *testing.T) {
	assert.Equal(t, []string{"configs/base.yaml"}, configFiles(""))
	assert.Equal(t, []string{"configs/base.yaml", "configs/prod.yaml"}, configFiles("prod"))
}

func TestPrefixedEnvKey(t *testing.T) {
	assert.Equal(t, "database.url", prefixedEnvKey("APP_DATABASE_URL"))
	assert.Equal(t, "log.file.enabled", prefixedEnvKey("APP_LOG_FILE_ENABLED"))
}

func TestSupervisorEnv(t *testing.T) {
	tests := []struct {
		key, value string
		wantKey    string
	}{
		{EnvPort, "3001", "server.port"},
		{EnvDatabaseURL, "postgres://x", "database.url"},
		{EnvPort, "", ""},
		{"HOME", "/root", ""},
		{"APP_SERVER_PORT", "9090", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			key, _ := supervisorEnv(tt.key, tt.value)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestDefaults_NoDatabaseURL(t *testing.T) {
	assert.NotContains(t, defaults(), "database.url")
}
