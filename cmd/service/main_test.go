package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-service/internal/adapters/storage"
	"github.com/jsamuelsen/quote-service/internal/platform/config"
)

func TestNewServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		App: config.AppConfig{Name: "quote-service", Version: "test", Environment: "test"},
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            3000,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
			MaxRequestSize:  1 << 20,
		},
		Telemetry: config.TelemetryConfig{ServiceName: "quote-service"},
		Database:  config.DatabaseConfig{URL: ":memory:", MaxConns: 1},
	}

	store, err := storage.Open(context.Background(), &cfg.Database, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	server, err := newServer(cfg, logger, store)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3000", server.Addr())

	for _, path := range []string{"/", "/-/ready", "/quotes"} {
		w := httptest.NewRecorder()
		server.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "")

	_, err := loadConfig()

	require.Error(t, err)
}
