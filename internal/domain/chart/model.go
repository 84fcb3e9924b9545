package chart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Warehouse Records
// =============================================================================

// DomesticDailyChart 국내 주식 일봉 (data.domestic_stock_daily_chart)
type DomesticDailyChart struct {
	Symbol        string              `json:"symbol" db:"symbol"`
	Date          time.Time           `json:"date" db:"trade_date"`
	Open          decimal.NullDecimal `json:"open" db:"open"`
	High          decimal.NullDecimal `json:"high" db:"high"`
	Low           decimal.NullDecimal `json:"low" db:"low"`
	Close         decimal.NullDecimal `json:"close" db:"close"`
	Volume        *int64              `json:"volume" db:"volume"`
	TradingAmount decimal.NullDecimal `json:"trading_amount" db:"trading_amount"`
	FlngClsCode   string              `json:"flng_cls_code" db:"flng_cls_code"`   // 락 구분 코드
	PrttRate      decimal.NullDecimal `json:"prtt_rate" db:"prtt_rate"`           // 분할 비율
	ModYn         string              `json:"mod_yn" db:"mod_yn"`                 // 변경 여부
	PrdyVrssSign  string              `json:"prdy_vrss_sign" db:"prdy_vrss_sign"` // 전일 대비 부호
	PrdyVrss      decimal.NullDecimal `json:"prdy_vrss" db:"prdy_vrss"`
	RevlIssuReas  string              `json:"revl_issu_reas" db:"revl_issu_reas"`

	// Period summary (output1), repeated on every row of the window.
	VolTnrt  decimal.NullDecimal `json:"vol_tnrt" db:"vol_tnrt"`
	LstnStcn *int64              `json:"lstn_stcn" db:"lstn_stcn"` // 상장 주수
	HtsAvls  decimal.NullDecimal `json:"hts_avls" db:"hts_avls"`   // 시가총액
	PER      decimal.NullDecimal `json:"per" db:"per"`
	EPS      decimal.NullDecimal `json:"eps" db:"eps"`
	PBR      decimal.NullDecimal `json:"pbr" db:"pbr"`
}

// OverseasDailyChart 해외 주식 일봉 (data.overseas_stock_daily_chart)
type OverseasDailyChart struct {
	ExchangeCode  string              `json:"exchange_code" db:"exchange_code"`
	Symbol        string              `json:"symbol" db:"symbol"`
	Date          time.Time           `json:"date" db:"trade_date"`
	Open          decimal.NullDecimal `json:"open" db:"open"`
	High          decimal.NullDecimal `json:"high" db:"high"`
	Low           decimal.NullDecimal `json:"low" db:"low"`
	Close         decimal.NullDecimal `json:"close" db:"close"`
	Volume        *int64              `json:"volume" db:"volume"`
	TradingAmount decimal.NullDecimal `json:"trading_amount" db:"trading_amount"`
	Sign          string              `json:"sign" db:"sign"`
	Diff          decimal.NullDecimal `json:"diff" db:"diff"`
	Rate          decimal.NullDecimal `json:"rate" db:"rate"`
	Zdiv          string              `json:"zdiv" db:"zdiv"` // 소수점 자리수
}

// WarehouseStats 적재 현황
type WarehouseStats struct {
	Tables []TableStats `json:"tables"`
}

// TableStats row counts and date bounds of one chart table.
type TableStats struct {
	Table       string     `json:"table"`
	Rows        int64      `json:"rows"`
	Symbols     int64      `json:"symbols"`
	FirstDate   *time.Time `json:"first_date,omitempty"`
	LastDate    *time.Time `json:"last_date,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// =============================================================================
// Fetch Results
// =============================================================================

// FetchResult is the outcome of fetching one symbol. Exactly one of Data and
// Err is set.
type FetchResult[T any] struct {
	Symbol string
	Data   *T
	Err    error
}

func NewFetchSuccess[T any](symbol string, data *T) FetchResult[T] {
	return FetchResult[T]{Symbol: symbol, Data: data}
}

func NewFetchFailure[T any](symbol string, err error) FetchResult[T] {
	return FetchResult[T]{Symbol: symbol, Err: err}
}

func (r FetchResult[T]) Success() bool {
	return r.Err == nil && r.Data != nil
}

// =============================================================================
// Jobs / Logs
// =============================================================================

// Market 시장 구분
type Market string

const (
	MarketDomestic Market = "domestic"
	MarketOverseas Market = "overseas"
)

// JobStatus 작업 상태
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ImportJob 백그라운드 적재 작업
type ImportJob struct {
	ID           uuid.UUID     `json:"job_id"`
	Market       Market        `json:"market"`
	Exchange     string        `json:"exchange,omitempty"`
	Symbols      []string      `json:"symbols"`
	StartDate    string        `json:"start_date"`
	EndDate      string        `json:"end_date"`
	SkipExisting bool          `json:"skip_existing"`
	ChunkSize    int           `json:"chunk_size,omitempty"`
	Status       JobStatus     `json:"status"`
	Results      ImportResults `json:"results,omitempty"`
	Summary      *Summary      `json:"summary,omitempty"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}

// FetchLog 수집 실행 로그 (data.fetch_logs)
type FetchLog struct {
	ID              int64      `json:"id" db:"id"`
	JobType         string     `json:"job_type" db:"job_type"`
	Source          string     `json:"source" db:"source"`
	TargetTable     string     `json:"target_table" db:"target_table"`
	RecordsFetched  int        `json:"records_fetched" db:"records_fetched"`
	RecordsInserted int        `json:"records_inserted" db:"records_inserted"`
	Status          string     `json:"status" db:"status"`
	ErrorMessage    *string    `json:"error_message" db:"error_message"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time `json:"finished_at" db:"finished_at"`
	DurationMs      *int       `json:"duration_ms" db:"duration_ms"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Warehouse table names, also used as fetch_logs.target_table.
const (
	TableDomesticDailyChart = "data.domestic_stock_daily_chart"
	TableOverseasDailyChart = "data.overseas_stock_daily_chart"
)
