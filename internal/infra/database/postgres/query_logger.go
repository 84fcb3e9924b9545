package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	applogger "github.com/kgcrom/cluefin-sub000/internal/pkg/logger"
)

// SlowQueryThreshold marks queries logged at warn level regardless of the
// configured level.
const SlowQueryThreshold = 500 * time.Millisecond

type ctxKey struct{}

var queryStartKey ctxKey

// queryTrace carries what TraceQueryEnd needs from TraceQueryStart; the end
// event has no SQL text.
type queryTrace struct {
	start time.Time
	sql   string
}

// QueryLogger implements pgx.QueryTracer and writes to the query log file.
type QueryLogger struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func NewQueryLogger(logger zerolog.Logger, level zerolog.Level) *QueryLogger {
	return &QueryLogger{
		logger: logger,
		level:  level,
	}
}

func (ql *QueryLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey, queryTrace{start: time.Now(), sql: data.SQL})
}

func (ql *QueryLogger) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	trace, ok := ctx.Value(queryStartKey).(queryTrace)
	if !ok {
		trace.start = time.Now()
	}
	duration := time.Since(trace.start)

	var event *zerolog.Event
	switch {
	case data.Err != nil:
		event = ql.logger.Error().Err(data.Err)
	case duration > SlowQueryThreshold:
		event = ql.logger.Warn()
	case ql.level <= zerolog.DebugLevel:
		event = ql.logger.Debug()
	default:
		return
	}

	if id := applogger.RequestID(ctx); id != "" {
		event = event.Str("request_id", id)
	}

	event.
		Str("sql", strings.Join(strings.Fields(trace.sql), " ")).
		Int64("duration_ms", duration.Milliseconds()).
		Str("command_tag", data.CommandTag.String()).
		Msg("Query executed")
}
