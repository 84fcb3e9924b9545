package chartimport

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/kis"
)

type domesticQuote = kis.DomesticStockPeriodQuote

// DomesticImporter 국내 주식 일봉 적재기
type DomesticImporter struct {
	*engine
	repo chart.DomesticChartRepository
}

// NewDomesticImporter builds an importer whose workers clone client.
func NewDomesticImporter(client *kis.Client, repo chart.DomesticChartRepository, cfg *Config) *DomesticImporter {
	return newDomesticImporter(NewKISBroker(client), KISClientFactory(client), repo, cfg)
}

func newDomesticImporter(template BrokerClient, factory ClientFactory, repo chart.DomesticChartRepository, cfg *Config) *DomesticImporter {
	return &DomesticImporter{
		engine: newEngine(template, factory, cfg),
		repo:   repo,
	}
}

// ImportOne imports a single symbol without the pool or rate limiter,
// retrying transport faults. Invalid input is returned as an error; any
// other failure is logged and reported as chart.ResultFailed.
func (im *DomesticImporter) ImportOne(ctx context.Context, symbol, start, end string, skipExisting bool) (int, error) {
	symbol = chart.NormalizeDomesticSymbol(symbol)
	if symbol == "" {
		return 0, chart.ErrInvalidSymbol
	}
	if err := chart.ValidateDomesticWindow(start, end); err != nil {
		return 0, err
	}

	logger := log.With().Str("symbol", symbol).Logger()

	if skipExisting {
		exists, err := im.repo.CheckDomesticStockDataExists(ctx, symbol, start, end)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to check existing data")
			return chart.ResultFailed, nil
		}
		if exists {
			logger.Info().Str("start", start).Str("end", end).Msg("Data already exists, skipping")
			return 0, nil
		}
	}

	resp, err := retry(ctx, im.engine, logger, func(ctx context.Context) (*domesticQuote, error) {
		return im.template.GetDomesticStockPeriodQuote(ctx, domesticParams(symbol, start, end))
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to import period data")
		return chart.ResultFailed, nil
	}

	n, err := im.save(ctx, symbol, resp)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to store chart data")
		return chart.ResultFailed, nil
	}
	logger.Info().Int("rows", n).Msg("Imported period data")
	return n, nil
}

// ImportBatch imports symbols chunk by chunk. Each symbol ends with a row
// count, 0 (skipped or empty) or chart.ResultFailed. The returned error is
// set only for invalid input, or when the existence check fails.
func (im *DomesticImporter) ImportBatch(ctx context.Context, symbols []string, start, end string, opts ...BatchOption) (chart.ImportResults, error) {
	if err := chart.ValidateDomesticWindow(start, end); err != nil {
		return nil, err
	}
	blanks := countBlank(symbols)
	symbols = chart.NormalizeSymbols(symbols, chart.NormalizeDomesticSymbol)

	return runBatch(ctx, im.engine, batch[domesticQuote]{
		logger:  log.Logger,
		symbols: symbols,
		blanks:  blanks,
		opts:    applyOptions(opts),
		covered: func(ctx context.Context, chunk []string) (map[string]bool, error) {
			return im.repo.CheckDomesticStockDataExistsBatch(ctx, chunk, start, end)
		},
		fetch: func(ctx context.Context, client BrokerClient, symbol string) chart.FetchResult[domesticQuote] {
			return im.fetch(ctx, client, symbol, start, end)
		},
		save: im.save,
	})
}

// fetch is the worker body: one token, one call, no retry.
func (im *DomesticImporter) fetch(ctx context.Context, client BrokerClient, symbol, start, end string) chart.FetchResult[domesticQuote] {
	if !im.acquire(ctx) {
		log.Warn().Str("symbol", symbol).Msg("Rate limit timeout")
		return chart.NewFetchFailure[domesticQuote](symbol, chart.ErrRateLimitTimeout)
	}

	resp, err := client.GetDomesticStockPeriodQuote(ctx, domesticParams(symbol, start, end))
	if err != nil {
		if isRetryable(err) {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Network error fetching period quote")
		} else {
			log.Error().Err(err).Str("symbol", symbol).Msg("API error fetching period quote")
		}
		return chart.NewFetchFailure[domesticQuote](symbol, err)
	}
	return chart.NewFetchSuccess(symbol, resp)
}

func (im *DomesticImporter) save(ctx context.Context, symbol string, resp *domesticQuote) (int, error) {
	records := NormalizeDomestic(symbol, resp)
	if len(records) == 0 {
		log.Warn().Str("symbol", symbol).Msg("No data returned from API")
		return 0, nil
	}

	n, err := im.repo.InsertDomesticStockDailyChart(ctx, symbol, records)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", symbol, err)
	}
	return n, nil
}
