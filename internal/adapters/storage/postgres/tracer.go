package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/tracelog"

	"github.com/jsamuelsen/quote-service/internal/platform/logging"
)

// traceLogger forwards pgx statement traces to slog.
type traceLogger struct {
	logger *slog.Logger
}

// NewTraceLogger adapts logger to the pgx tracelog.Logger interface.
// Statement traces land at logging.LevelTrace, so they only show when the
// service runs with log.level=trace.
func NewTraceLogger(logger *slog.Logger) tracelog.Logger {
	return &traceLogger{logger: logger.With(slog.String("component", "pgx"))}
}

func (l *traceLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	lvl := slogLevel(level)
	if !l.logger.Enabled(ctx, lvl) {
		return
	}

	attrs := make([]slog.Attr, 0, len(data))
	for k, v := range data {
		attrs = append(attrs, slog.Any(k, v))
	}

	l.logger.LogAttrs(ctx, lvl, msg, attrs...)
}

func slogLevel(level tracelog.LogLevel) slog.Level {
	switch level {
	case tracelog.LogLevelError:
		return slog.LevelError
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	default:
		return logging.LevelTrace
	}
}
