package chart

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres"
)

// Repository PostgreSQL 일봉 저장소 (data.domestic_stock_daily_chart, data.overseas_stock_daily_chart)
type Repository struct {
	pool *postgres.Pool
}

// NewRepository 저장소 생성
func NewRepository(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

var (
	_ chart.DomesticChartRepository = (*Repository)(nil)
	_ chart.OverseasChartRepository = (*Repository)(nil)
	_ chart.StatsRepository         = (*Repository)(nil)
)

// =============================================================================
// Domestic
// =============================================================================

const upsertDomesticQuery = `
	INSERT INTO data.domestic_stock_daily_chart
		(symbol, trade_date, open, high, low, close, volume, trading_amount,
		 flng_cls_code, prtt_rate, mod_yn, prdy_vrss_sign, prdy_vrss, revl_issu_reas,
		 vol_tnrt, lstn_stcn, hts_avls, per, eps, pbr)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	ON CONFLICT (symbol, trade_date) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume,
		trading_amount = EXCLUDED.trading_amount,
		flng_cls_code = EXCLUDED.flng_cls_code,
		prtt_rate = EXCLUDED.prtt_rate,
		mod_yn = EXCLUDED.mod_yn,
		prdy_vrss_sign = EXCLUDED.prdy_vrss_sign,
		prdy_vrss = EXCLUDED.prdy_vrss,
		revl_issu_reas = EXCLUDED.revl_issu_reas,
		vol_tnrt = EXCLUDED.vol_tnrt,
		lstn_stcn = EXCLUDED.lstn_stcn,
		hts_avls = EXCLUDED.hts_avls,
		per = EXCLUDED.per,
		eps = EXCLUDED.eps,
		pbr = EXCLUDED.pbr,
		updated_at = NOW()
`

// InsertDomesticStockDailyChart 국내 일봉 일괄 저장
func (r *Repository) InsertDomesticStockDailyChart(ctx context.Context, symbol string, records []*chart.DomesticDailyChart) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertDomesticQuery,
			symbol, rec.Date,
			rec.Open, rec.High, rec.Low, rec.Close, rec.Volume, rec.TradingAmount,
			rec.FlngClsCode, rec.PrttRate, rec.ModYn, rec.PrdyVrssSign, rec.PrdyVrss, rec.RevlIssuReas,
			rec.VolTnrt, rec.LstnStcn, rec.HtsAvls, rec.PER, rec.EPS, rec.PBR,
		)
	}

	n, err := r.sendBatch(ctx, batch)
	if err != nil {
		return n, fmt.Errorf("batch upsert domestic chart %s: %w", symbol, err)
	}
	return n, nil
}

// CheckDomesticStockDataExists 기간 적재 여부
func (r *Repository) CheckDomesticStockDataExists(ctx context.Context, symbol, start, end string) (bool, error) {
	found, err := r.CheckDomesticStockDataExistsBatch(ctx, []string{symbol}, start, end)
	if err != nil {
		return false, err
	}
	return found[symbol], nil
}

// CheckDomesticStockDataExistsBatch 종목별 기간 적재 여부 (단일 쿼리)
func (r *Repository) CheckDomesticStockDataExistsBatch(ctx context.Context, symbols []string, start, end string) (map[string]bool, error) {
	query := `
		SELECT symbol, COUNT(*)
		FROM data.domestic_stock_daily_chart
		WHERE symbol = ANY($1) AND trade_date >= $2 AND trade_date <= $3
		GROUP BY symbol
	`
	return r.coverage(ctx, query, nil, symbols, start, end)
}

// =============================================================================
// Overseas
// =============================================================================

const upsertOverseasQuery = `
	INSERT INTO data.overseas_stock_daily_chart
		(exchange_code, symbol, trade_date, open, high, low, close, volume, trading_amount,
		 sign, diff, rate, zdiv)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (exchange_code, symbol, trade_date) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume,
		trading_amount = EXCLUDED.trading_amount,
		sign = EXCLUDED.sign,
		diff = EXCLUDED.diff,
		rate = EXCLUDED.rate,
		zdiv = EXCLUDED.zdiv,
		updated_at = NOW()
`

// InsertOverseasStockDailyChart 해외 일봉 일괄 저장
func (r *Repository) InsertOverseasStockDailyChart(ctx context.Context, exchange, symbol string, records []*chart.OverseasDailyChart) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertOverseasQuery,
			exchange, symbol, rec.Date,
			rec.Open, rec.High, rec.Low, rec.Close, rec.Volume, rec.TradingAmount,
			rec.Sign, rec.Diff, rec.Rate, rec.Zdiv,
		)
	}

	n, err := r.sendBatch(ctx, batch)
	if err != nil {
		return n, fmt.Errorf("batch upsert overseas chart %s:%s: %w", exchange, symbol, err)
	}
	return n, nil
}

// CheckOverseasStockDataExists 기간 적재 여부
func (r *Repository) CheckOverseasStockDataExists(ctx context.Context, exchange, symbol, start, end string) (bool, error) {
	found, err := r.CheckOverseasStockDataExistsBatch(ctx, exchange, []string{symbol}, start, end)
	if err != nil {
		return false, err
	}
	return found[symbol], nil
}

// CheckOverseasStockDataExistsBatch 종목별 기간 적재 여부 (단일 쿼리)
func (r *Repository) CheckOverseasStockDataExistsBatch(ctx context.Context, exchange string, symbols []string, start, end string) (map[string]bool, error) {
	query := `
		SELECT symbol, COUNT(*)
		FROM data.overseas_stock_daily_chart
		WHERE exchange_code = $4 AND symbol = ANY($1) AND trade_date >= $2 AND trade_date <= $3
		GROUP BY symbol
	`
	return r.coverage(ctx, query, []any{exchange}, symbols, start, end)
}

// =============================================================================
// Stats
// =============================================================================

// Stats 테이블별 적재 현황
func (r *Repository) Stats(ctx context.Context) (*chart.WarehouseStats, error) {
	stats := &chart.WarehouseStats{}
	for _, table := range []string{chart.TableDomesticDailyChart, chart.TableOverseasDailyChart} {
		// table comes from the constant list above
		query := fmt.Sprintf(`
			SELECT COUNT(*), COUNT(DISTINCT symbol), MIN(trade_date), MAX(trade_date), MAX(updated_at)
			FROM %s
		`, table)

		ts := chart.TableStats{Table: table}
		err := r.pool.QueryRow(ctx, query).Scan(
			&ts.Rows, &ts.Symbols, &ts.FirstDate, &ts.LastDate, &ts.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("stats %s: %w", table, err)
		}
		stats.Tables = append(stats.Tables, ts)
	}
	return stats, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (r *Repository) sendBatch(ctx context.Context, batch *pgx.Batch) (int, error) {
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// coverage runs a per-symbol COUNT query ($1 symbols, $2 start, $3 end,
// then extra) and applies chart.WindowCovered. Symbols without rows map to
// false.
func (r *Repository) coverage(ctx context.Context, query string, extra []any, symbols []string, start, end string) (map[string]bool, error) {
	from, to, err := parseWindow(start, end)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		found[s] = false
	}
	if len(symbols) == 0 {
		return found, nil
	}

	args := append([]any{symbols, from, to}, extra...)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chart coverage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			symbol string
			count  int
		)
		if err := rows.Scan(&symbol, &count); err != nil {
			return nil, fmt.Errorf("scan chart coverage: %w", err)
		}
		found[symbol] = chart.WindowCovered(count, from, to)
	}

	return found, rows.Err()
}

func parseWindow(start, end string) (time.Time, time.Time, error) {
	if err := chart.ValidateWindow(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, _ := chart.ParseDate(start)
	to, _ := chart.ParseDate(end)
	return from, to, nil
}
