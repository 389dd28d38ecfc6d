// Package storage selects and opens the quote store named by the database URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-service/internal/adapters/storage/postgres"
	"github.com/jsamuelsen/quote-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-service/internal/platform/config"
	"github.com/jsamuelsen/quote-service/internal/ports"
)

// ErrUnsupportedURL is returned when no store recognises the database URL.
var ErrUnsupportedURL = errors.New("unsupported database url")

// DetectDialect infers the store from url. postgres:// and postgresql://
// URLs and key=value DSNs select postgres. sqlite://, file: and :memory:
// select sqlite.
func DetectDialect(url string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(url))

	switch {
	case lower == "":
		return "", fmt.Errorf("%w: empty", ErrUnsupportedURL)
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgres.Dialect, nil
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"), lower == ":memory:":
		return sqlite.Dialect, nil
	case !strings.Contains(lower, "://") && isKeyValueDSN(lower):
		return postgres.Dialect, nil
	default:
		return "", fmt.Errorf("%w: unknown scheme", ErrUnsupportedURL)
	}
}

func isKeyValueDSN(dsn string) bool {
	for _, key := range []string{"host=", "user=", "dbname=", "sslmode="} {
		if strings.Contains(dsn, key) {
			return true
		}
	}

	return false
}

// Open connects the store for cfg.URL. The store is reachable when Open
// returns; the caller owns it and must Close it at shutdown.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (ports.QuoteStore, error) {
	dialect, err := DetectDialect(cfg.URL)
	if err != nil {
		return nil, err
	}

	var store ports.QuoteStore

	switch dialect {
	case postgres.Dialect:
		store, err = postgres.Open(ctx, cfg, logger)
	default:
		store, err = sqlite.Open(ctx, cfg, logger)
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", dialect, err)
	}

	return store, nil
}
