// Package sqlite implements the quote store on an embedded SQLite database
// through gorm. It backs local development and tests; production runs on
// the postgres store.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jsamuelsen/quote-service/internal/platform/config"
	"github.com/jsamuelsen/quote-service/internal/platform/logging"
)

// Dialect labels metrics and spans recorded by this store.
const Dialect = "sqlite"

// slowQueryThreshold is where gorm starts warning about statement latency.
const slowQueryThreshold = 200 * time.Millisecond

// Store is a quote repository backed by gorm over SQLite.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open opens the database named by cfg.URL and creates the quotes table if
// it does not exist. Accepted forms are sqlite://path, file:path and :memory:.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := NormalizeDSN(cfg.URL)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(logger, cfg.TraceSQL),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to an in-memory database sees its own empty
	// database, so the pool is pinned to one.
	if isInMemory(dsn) {
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
	}

	if err := db.WithContext(ctx).AutoMigrate(&quoteModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrating quotes table: %w", err)
	}

	logger.InfoContext(ctx, "connected to database",
		slog.String("dialect", Dialect),
		slog.Bool("in_memory", isInMemory(dsn)),
	)

	return &Store{db: db, logger: logger}, nil
}

// Name identifies the store in readiness results.
func (s *Store) Name() string {
	return Dialect
}

// Check pings the underlying database handle.
func (s *Store) Check(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close releases the database handle. An in-memory database is discarded.
func (s *Store) Close() error {
	s.logger.Info("closing database connection pool", slog.String("dialect", Dialect))

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// NormalizeDSN rewrites sqlite:// URLs into the file: form the driver
// understands and adds a busy timeout to file databases.
func NormalizeDSN(url string) string {
	dsn := strings.TrimSpace(url)

	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "sqlite://") {
		dsn = "file:" + dsn[len("sqlite://"):]
	}

	if isInMemory(dsn) || strings.Contains(dsn, "_pragma=") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_pragma=busy_timeout(5000)"
}

func isInMemory(dsn string) bool {
	return dsn == ":memory:" ||
		strings.HasPrefix(dsn, "file::memory:") ||
		strings.Contains(dsn, "mode=memory")
}

// slogWriter receives gorm's formatted log lines.
type slogWriter struct {
	logger *slog.Logger
	level  slog.Level
}

func (w slogWriter) Printf(format string, args ...any) {
	msg := strings.ReplaceAll(fmt.Sprintf(format, args...), "\n", " ")
	w.logger.Log(context.Background(), w.level, msg)
}

// newGormLogger routes gorm's logging to slog. By default only slow queries
// and errors are reported, at warn. With trace set every statement is
// written at logging.LevelTrace.
func newGormLogger(logger *slog.Logger, trace bool) gormlogger.Interface {
	w := slogWriter{
		logger: logger.With(slog.String("component", "gorm")),
		level:  slog.LevelWarn,
	}
	level := gormlogger.Warn

	if trace {
		w.level = logging.LevelTrace
		level = gormlogger.Info
	}

	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
