package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kgcrom/cluefin-sub000/internal/pkg/config"
	applogger "github.com/kgcrom/cluefin-sub000/internal/pkg/logger"
)

// WarehouseSchema holds every chart table and the fetch log.
const WarehouseSchema = "data"

// Pool wraps pgxpool.Pool
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates the warehouse connection pool from DATABASE_URL.
func NewPool(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Uint16("port", poolConfig.ConnConfig.Port).
		Str("database", poolConfig.ConnConfig.Database).
		Str("user", poolConfig.ConnConfig.User).
		Msg("Connecting to PostgreSQL...")

	if cfg.Logging.FileEnabled {
		queryLogger := applogger.NewQueryLogger(
			cfg.Logging.FilePath,
			cfg.Logging.RotationSize,
			cfg.Logging.RetentionDays,
		)
		poolConfig.ConnConfig.Tracer = NewQueryLogger(queryLogger, queryLogLevel(cfg.Logging.Level))
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("PostgreSQL connected")

	if err := checkSchema(ctx, pool); err != nil {
		log.Warn().Err(err).Msg("Schema check failed, but continuing...")
	}

	return &Pool{Pool: pool}, nil
}

func queryLogLevel(level string) zerolog.Level {
	switch level {
	case "warn", "error":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// checkSchema warns when the warehouse schema has not been migrated yet.
func checkSchema(ctx context.Context, pool *pgxpool.Pool) error {
	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_namespace WHERE nspname = $1)`,
		WarehouseSchema,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check schema %s: %w", WarehouseSchema, err)
	}

	if !exists {
		log.Warn().
			Str("schema", WarehouseSchema).
			Msg("Schema does not exist, run `cluefin db migrate`")
	}
	return nil
}

// Close closes the connection pool
func (p *Pool) Close() {
	log.Info().Msg("Closing PostgreSQL connection pool...")
	p.Pool.Close()
}
