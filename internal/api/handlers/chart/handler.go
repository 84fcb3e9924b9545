package chart

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kgcrom/cluefin-sub000/internal/api/response"
	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/service/chartimport"
)

// Jobs is satisfied by *chartimport.JobRunner.
type Jobs interface {
	Submit(req chartimport.Request) (*chart.ImportJob, error)
	Get(id uuid.UUID) (*chart.ImportJob, error)
}

// Handler 일봉 적재 API 핸들러
type Handler struct {
	jobs         Jobs
	stats        chart.StatsRepository
	fetchLogs    chart.FetchLogRepository
	lookbackDays int
}

// NewHandler 핸들러 생성. lookbackDays sizes the window when a request omits
// its dates.
func NewHandler(jobs Jobs, stats chart.StatsRepository, fetchLogs chart.FetchLogRepository, lookbackDays int) *Handler {
	if lookbackDays <= 0 {
		lookbackDays = chart.DefaultLookbackDays
	}
	return &Handler{
		jobs:         jobs,
		stats:        stats,
		fetchLogs:    fetchLogs,
		lookbackDays: lookbackDays,
	}
}

// =============================================================================
// Request Types
// =============================================================================

// ImportRequest 국내 적재 요청
type ImportRequest struct {
	Symbols      []string `json:"symbols" binding:"required,min=1"`
	StartDate    string   `json:"start_date"` // YYYYMMDD
	EndDate      string   `json:"end_date"`
	SkipExisting *bool    `json:"skip_existing"` // default true
	ChunkSize    int      `json:"chunk_size" binding:"omitempty,min=1"`
}

// OverseasImportRequest 해외 적재 요청
type OverseasImportRequest struct {
	ImportRequest
	Exchange string `json:"exchange" binding:"required"`
}

func (r ImportRequest) toRequest(market chart.Market, lookbackDays int) chartimport.Request {
	start, end := r.StartDate, r.EndDate
	if start == "" || end == "" {
		defStart, defEnd := chart.DefaultWindow(lookbackDays)
		if start == "" {
			start = defStart
		}
		if end == "" {
			end = defEnd
		}
	}

	skip := true
	if r.SkipExisting != nil {
		skip = *r.SkipExisting
	}

	return chartimport.Request{
		Market:       market,
		Symbols:      r.Symbols,
		Start:        start,
		End:          end,
		SkipExisting: skip,
		ChunkSize:    r.ChunkSize,
	}
}

// =============================================================================
// Import Handlers
// =============================================================================

// ImportDomestic handles POST /api/v1/charts/domestic/import
func (h *Handler) ImportDomestic(c *gin.Context) {
	var body ImportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.submit(c, body.toRequest(chart.MarketDomestic, h.lookbackDays))
}

// ImportOverseas handles POST /api/v1/charts/overseas/import
func (h *Handler) ImportOverseas(c *gin.Context) {
	var body OverseasImportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req := body.toRequest(chart.MarketOverseas, h.lookbackDays)
	req.Exchange = body.Exchange
	h.submit(c, req)
}

func (h *Handler) submit(c *gin.Context, req chartimport.Request) {
	job, err := h.jobs.Submit(req)
	switch {
	case err == nil:
		response.Accepted(c, job, "Import job started")
	case errors.Is(err, chart.ErrJobAlreadyRunning):
		response.Conflict(c, err.Error())
	case chart.IsValidationError(err):
		response.ValidationError(c, err)
	default:
		response.InternalError(c, err)
	}
}

// GetJob handles GET /api/v1/charts/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid job id")
		return
	}

	job, err := h.jobs.Get(id)
	if err != nil {
		if errors.Is(err, chart.ErrJobNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, job)
}

// =============================================================================
// Warehouse Handlers
// =============================================================================

// GetStats handles GET /api/v1/charts/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, err)
		return
	}
	response.Success(c, stats)
}

const (
	defaultFetchLogLimit = 20
	maxFetchLogLimit     = 100
)

// GetFetchLogs handles GET /api/v1/charts/fetch-logs?limit=
func (h *Handler) GetFetchLogs(c *gin.Context) {
	limit := defaultFetchLogLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxFetchLogLimit)
	}

	logs, err := h.fetchLogs.GetRecent(c.Request.Context(), limit)
	if err != nil {
		response.DatabaseError(c, err)
		return
	}
	response.SuccessList(c, logs, len(logs))
}
