package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kgcrom/cluefin-sub000/internal/api"
	"github.com/kgcrom/cluefin-sub000/internal/api/handlers"
	charthandler "github.com/kgcrom/cluefin-sub000/internal/api/handlers/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres"
	pgchart "github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres/chart"
	"github.com/kgcrom/cluefin-sub000/internal/service/chartimport"
)

const shutdownTimeout = 10 * time.Second

var serveMigrate bool

// serveCmd cluefin serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. Imports submitted over HTTP run in the background,
one at a time.

Endpoints:
    GET  /health
    GET  /health/ready
    GET  /api/v1/health/detailed
    POST /api/v1/charts/domestic/import
    POST /api/v1/charts/overseas/import
    GET  /api/v1/charts/jobs/:id
    GET  /api/v1/charts/stats
    GET  /api/v1/charts/fetch-logs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply the schema before serving")
}

func runServe(parent context.Context) error {
	ctx, stop := signalContext(parent)
	defer stop()

	log.Info().Str("version", serviceVersion).Msg("Starting cluefin API")

	st, err := buildStack(ctx, importerFlags{})
	if err != nil {
		return err
	}
	defer st.close()

	if serveMigrate {
		if err := postgres.Migrate(ctx, st.pool); err != nil {
			return err
		}
	}

	// Jobs outlive the request that submitted them; only shutdown cancels.
	jobs := chartimport.NewJobRunner(context.Background(), st.service)

	repo := pgchart.NewRepository(st.pool)
	router := api.NewRouter(cfg, api.Handlers{
		Health: handlers.NewHealthHandler(st.pool, jobs, serviceVersion),
		Chart:  charthandler.NewHandler(jobs, repo, pgchart.NewFetchLogRepository(st.pool), cfg.Importer.LookbackDays),
	})

	server := router.Server(":" + cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("API server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		jobs.Stop()
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	// A running import stops after its current chunk.
	jobs.Stop()

	log.Info().Msg("Server stopped")
	return nil
}
