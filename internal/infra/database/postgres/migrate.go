package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the warehouse schema and tables. Every statement is
// idempotent, so it is safe to run on each deploy.
func Migrate(ctx context.Context, pool *Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// No arguments, so pgx sends the multi-statement file over the simple protocol.
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	log.Info().Str("schema", WarehouseSchema).Msg("Warehouse schema migrated")
	return nil
}
