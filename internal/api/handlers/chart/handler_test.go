package chart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/service/chartimport"
)

type fakeJobs struct {
	submitted []chartimport.Request
	submitErr error
	jobs      map[uuid.UUID]*chart.ImportJob
}

func (f *fakeJobs) Submit(req chartimport.Request) (*chart.ImportJob, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f.submitted = append(f.submitted, req)
	return &chart.ImportJob{ID: uuid.New(), Market: req.Market, Status: chart.JobPending}, nil
}

func (f *fakeJobs) Get(id uuid.UUID) (*chart.ImportJob, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, chart.ErrJobNotFound
}

type fakeStats struct {
	err error
}

func (f *fakeStats) Stats(ctx context.Context) (*chart.WarehouseStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &chart.WarehouseStats{Tables: []chart.TableStats{{Table: chart.TableDomesticDailyChart, Rows: 42, Symbols: 2}}}, nil
}

type fakeLogs struct {
	limit int
}

func (f *fakeLogs) Create(ctx context.Context, l *chart.FetchLog) error { return nil }

func (f *fakeLogs) GetRecent(ctx context.Context, limit int) ([]*chart.FetchLog, error) {
	f.limit = limit
	return []*chart.FetchLog{{ID: 1, JobType: "chart_domestic", StartedAt: time.Now()}}, nil
}

func setup(jobs *fakeJobs) (*gin.Engine, *fakeLogs) {
	gin.SetMode(gin.TestMode)
	logs := &fakeLogs{}
	h := NewHandler(jobs, &fakeStats{}, logs, 30)

	engine := gin.New()
	engine.POST("/domestic", h.ImportDomestic)
	engine.POST("/overseas", h.ImportOverseas)
	engine.GET("/jobs/:id", h.GetJob)
	engine.GET("/stats", h.GetStats)
	engine.GET("/logs", h.GetFetchLogs)
	return engine, logs
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHandler_ImportDomestic(t *testing.T) {
	t.Run("accepted with defaults", func(t *testing.T) {
		jobs := &fakeJobs{}
		engine, _ := setup(jobs)

		w := do(engine, http.MethodPost, "/domestic", `{"symbols":["005930","000660"]}`)
		require.Equal(t, http.StatusAccepted, w.Code)

		require.Len(t, jobs.submitted, 1)
		req := jobs.submitted[0]
		assert.Equal(t, chart.MarketDomestic, req.Market)
		assert.True(t, req.SkipExisting)
		assert.Len(t, req.Start, 8)
		assert.Len(t, req.End, 8)
		assert.NoError(t, chart.ValidateWindow(req.Start, req.End))
	})

	t.Run("explicit window and options", func(t *testing.T) {
		jobs := &fakeJobs{}
		engine, _ := setup(jobs)

		w := do(engine, http.MethodPost, "/domestic",
			`{"symbols":["005930"],"start_date":"20240101","end_date":"20240131","skip_existing":false,"chunk_size":5}`)
		require.Equal(t, http.StatusAccepted, w.Code)

		req := jobs.submitted[0]
		assert.Equal(t, "20240101", req.Start)
		assert.Equal(t, "20240131", req.End)
		assert.False(t, req.SkipExisting)
		assert.Equal(t, 5, req.ChunkSize)
	})

	t.Run("bad body", func(t *testing.T) {
		engine, _ := setup(&fakeJobs{})

		w := do(engine, http.MethodPost, "/domestic", `{"symbols":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = do(engine, http.MethodPost, "/domestic", `not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid window", func(t *testing.T) {
		engine, _ := setup(&fakeJobs{})

		w := do(engine, http.MethodPost, "/domestic", `{"symbols":["005930"],"start_date":"20240131","end_date":"20240101"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("busy", func(t *testing.T) {
		engine, _ := setup(&fakeJobs{submitErr: chart.ErrJobAlreadyRunning})

		w := do(engine, http.MethodPost, "/domestic", `{"symbols":["005930"]}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_ImportOverseas(t *testing.T) {
	jobs := &fakeJobs{}
	engine, _ := setup(jobs)

	w := do(engine, http.MethodPost, "/overseas", `{"exchange":"NASDAQ","symbols":["AAPL"],"start_date":"20240101","end_date":"20240105"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "NASDAQ", jobs.submitted[0].Exchange)
	assert.Equal(t, chart.MarketOverseas, jobs.submitted[0].Market)

	w = do(engine, http.MethodPost, "/overseas", `{"exchange":"LSE","symbols":["VOD"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = do(engine, http.MethodPost, "/overseas", `{"symbols":["AAPL"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetJob(t *testing.T) {
	id := uuid.New()
	engine, _ := setup(&fakeJobs{jobs: map[uuid.UUID]*chart.ImportJob{
		id: {ID: id, Status: chart.JobCompleted, Results: chart.ImportResults{"005930": 21}},
	}})

	w := do(engine, http.MethodGet, "/jobs/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
	assert.Contains(t, w.Body.String(), `"005930":21`)

	w = do(engine, http.MethodGet, "/jobs/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(engine, http.MethodGet, "/jobs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Warehouse(t *testing.T) {
	t.Run("stats", func(t *testing.T) {
		engine, _ := setup(&fakeJobs{})
		w := do(engine, http.MethodGet, "/stats", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"rows":42`)
	})

	t.Run("stats failure", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		h := NewHandler(&fakeJobs{}, &fakeStats{err: errors.New("db down")}, &fakeLogs{}, 0)
		engine := gin.New()
		engine.GET("/stats", h.GetStats)

		w := do(engine, http.MethodGet, "/stats", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "DATABASE_ERROR", errorCode(t, w))
	})

	t.Run("fetch log limit", func(t *testing.T) {
		engine, logs := setup(&fakeJobs{})

		w := do(engine, http.MethodGet, "/logs", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 20, logs.limit)
		assert.Contains(t, w.Body.String(), `"count":1`)

		do(engine, http.MethodGet, "/logs?limit=500", "")
		assert.Equal(t, 100, logs.limit)

		w = do(engine, http.MethodGet, "/logs?limit=-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
