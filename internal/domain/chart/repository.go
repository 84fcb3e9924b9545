package chart

import "context"

// =============================================================================
// Warehouse
// =============================================================================

// DomesticChartRepository 국내 일봉 저장소 (data.domestic_stock_daily_chart)
type DomesticChartRepository interface {
	// InsertDomesticStockDailyChart upserts records and returns the rows written.
	InsertDomesticStockDailyChart(ctx context.Context, symbol string, records []*DomesticDailyChart) (int, error)

	CheckDomesticStockDataExists(ctx context.Context, symbol, start, end string) (bool, error)
	CheckDomesticStockDataExistsBatch(ctx context.Context, symbols []string, start, end string) (map[string]bool, error)
}

// OverseasChartRepository 해외 일봉 저장소 (data.overseas_stock_daily_chart)
type OverseasChartRepository interface {
	InsertOverseasStockDailyChart(ctx context.Context, exchange, symbol string, records []*OverseasDailyChart) (int, error)

	CheckOverseasStockDataExists(ctx context.Context, exchange, symbol, start, end string) (bool, error)
	CheckOverseasStockDataExistsBatch(ctx context.Context, exchange string, symbols []string, start, end string) (map[string]bool, error)
}

// StatsRepository 적재 현황 조회
type StatsRepository interface {
	Stats(ctx context.Context) (*WarehouseStats, error)
}

// FetchLogRepository 수집 로그 저장소 (data.fetch_logs)
type FetchLogRepository interface {
	Create(ctx context.Context, log *FetchLog) error
	GetRecent(ctx context.Context, limit int) ([]*FetchLog, error)
}
