package cmd

import (
	"context"
	"fmt"

	"github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres"
	pgchart "github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/kis"
	"github.com/kgcrom/cluefin-sub000/internal/service/chartimport"
)

// importerFlags override the IMPORT_* settings for one run.
type importerFlags struct {
	workers   int
	rateLimit float64
}

// stack is everything an import run needs. close releases it.
type stack struct {
	pool    *postgres.Pool
	kis     *kis.Client
	service *chartimport.Service

	domestic *chartimport.DomesticImporter
	overseas *chartimport.OverseasImporter
}

func (s *stack) close() {
	if s.kis != nil {
		_ = s.kis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

func buildStack(ctx context.Context, flags importerFlags) (*stack, error) {
	client, err := kis.NewClient(kis.ConfigFrom(cfg.KIS))
	if err != nil {
		return nil, fmt.Errorf("create KIS client: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	icfg := chartimport.DefaultConfig()
	icfg.RateLimit = cfg.Importer.RateLimit
	icfg.MaxWorkers = cfg.Importer.MaxWorkers
	if flags.rateLimit > 0 {
		icfg.RateLimit = flags.rateLimit
	}
	if flags.workers > 0 {
		icfg.MaxWorkers = flags.workers
	}

	repo := pgchart.NewRepository(pool)
	s := &stack{
		pool:     pool,
		kis:      client,
		domestic: chartimport.NewDomesticImporter(client, repo, icfg),
		overseas: chartimport.NewOverseasImporter(client, repo, icfg),
	}
	s.service = chartimport.NewService(s.domestic, s.overseas, pgchart.NewFetchLogRepository(pool))
	return s, nil
}
