package chartimport

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/kis"
)

type overseasQuote = kis.OverseasStockPeriodQuote

// OverseasImporter 해외 주식 일봉 적재기
type OverseasImporter struct {
	*engine
	repo chart.OverseasChartRepository
}

func NewOverseasImporter(client *kis.Client, repo chart.OverseasChartRepository, cfg *Config) *OverseasImporter {
	return newOverseasImporter(NewKISBroker(client), KISClientFactory(client), repo, cfg)
}

func newOverseasImporter(template BrokerClient, factory ClientFactory, repo chart.OverseasChartRepository, cfg *Config) *OverseasImporter {
	return &OverseasImporter{
		engine: newEngine(template, factory, cfg),
		repo:   repo,
	}
}

// ImportOne imports a single overseas symbol; see DomesticImporter.ImportOne.
// The overseas endpoint has no weekday bound.
func (im *OverseasImporter) ImportOne(ctx context.Context, exchange, symbol, start, end string, skipExisting bool) (int, error) {
	exchange, err := chart.NormalizeExchange(exchange)
	if err != nil {
		return 0, err
	}
	symbol = chart.NormalizeOverseasSymbol(symbol)
	if symbol == "" {
		return 0, chart.ErrInvalidSymbol
	}
	if err := chart.ValidateWindow(start, end); err != nil {
		return 0, err
	}
	startDate, _ := chart.ParseDate(start)

	logger := log.With().Str("exchange", exchange).Str("symbol", symbol).Logger()

	if skipExisting {
		exists, err := im.repo.CheckOverseasStockDataExists(ctx, exchange, symbol, start, end)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to check existing data")
			return chart.ResultFailed, nil
		}
		if exists {
			logger.Info().Str("start", start).Str("end", end).Msg("Data already exists, skipping")
			return 0, nil
		}
	}

	brokerExchange := chart.BrokerExchangeCode(exchange)
	resp, err := retry(ctx, im.engine, logger, func(ctx context.Context) (*overseasQuote, error) {
		return im.template.GetOverseasStockPeriodQuote(ctx, overseasParams(brokerExchange, symbol, end))
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to import period data")
		return chart.ResultFailed, nil
	}

	n, err := im.save(ctx, exchange, symbol, resp, startDate)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to store chart data")
		return chart.ResultFailed, nil
	}
	logger.Info().Int("rows", n).Msg("Imported period data")
	return n, nil
}

// ImportBatch imports symbols listed on one exchange; see
// DomesticImporter.ImportBatch for result semantics.
func (im *OverseasImporter) ImportBatch(ctx context.Context, exchange string, symbols []string, start, end string, opts ...BatchOption) (chart.ImportResults, error) {
	exchange, err := chart.NormalizeExchange(exchange)
	if err != nil {
		return nil, err
	}
	if err := chart.ValidateWindow(start, end); err != nil {
		return nil, err
	}
	startDate, _ := chart.ParseDate(start)
	blanks := countBlank(symbols)
	symbols = chart.NormalizeSymbols(symbols, chart.NormalizeOverseasSymbol)
	brokerExchange := chart.BrokerExchangeCode(exchange)

	return runBatch(ctx, im.engine, batch[overseasQuote]{
		logger:  log.With().Str("exchange", exchange).Logger(),
		symbols: symbols,
		blanks:  blanks,
		opts:    applyOptions(opts),
		covered: func(ctx context.Context, chunk []string) (map[string]bool, error) {
			return im.repo.CheckOverseasStockDataExistsBatch(ctx, exchange, chunk, start, end)
		},
		fetch: func(ctx context.Context, client BrokerClient, symbol string) chart.FetchResult[overseasQuote] {
			return im.fetch(ctx, client, exchange, brokerExchange, symbol, end)
		},
		save: func(ctx context.Context, symbol string, resp *overseasQuote) (int, error) {
			return im.save(ctx, exchange, symbol, resp, startDate)
		},
	})
}

func (im *OverseasImporter) fetch(ctx context.Context, client BrokerClient, exchange, brokerExchange, symbol, end string) chart.FetchResult[overseasQuote] {
	logger := log.With().Str("exchange", exchange).Str("symbol", symbol).Logger()

	if !im.acquire(ctx) {
		logger.Warn().Msg("Rate limit timeout")
		return chart.NewFetchFailure[overseasQuote](symbol, chart.ErrRateLimitTimeout)
	}

	resp, err := client.GetOverseasStockPeriodQuote(ctx, overseasParams(brokerExchange, symbol, end))
	if err != nil {
		if isRetryable(err) {
			logger.Warn().Err(err).Msg("Network error fetching period quote")
		} else {
			logger.Error().Err(err).Msg("API error fetching period quote")
		}
		return chart.NewFetchFailure[overseasQuote](symbol, err)
	}
	return chart.NewFetchSuccess(symbol, resp)
}

func (im *OverseasImporter) save(ctx context.Context, exchange, symbol string, resp *overseasQuote, start time.Time) (int, error) {
	records := NormalizeOverseas(exchange, symbol, resp, start)
	if len(records) == 0 {
		log.Warn().Str("exchange", exchange).Str("symbol", symbol).Msg("No data returned from API")
		return 0, nil
	}

	n, err := im.repo.InsertOverseasStockDailyChart(ctx, exchange, symbol, records)
	if err != nil {
		return 0, fmt.Errorf("insert %s:%s: %w", exchange, symbol, err)
	}
	return n, nil
}
