package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres"
)

type fakeDB struct {
	status *postgres.HealthStatus
}

func (f *fakeDB) Health(ctx context.Context) *postgres.HealthStatus {
	return f.status
}

type fakeImports bool

func (f fakeImports) Running() bool { return bool(f) }

func get(h gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/", h)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestHealthHandler(t *testing.T) {
	healthy := &fakeDB{status: &postgres.HealthStatus{Status: postgres.StatusHealthy, Migrated: true}}

	t.Run("liveness ignores the database", func(t *testing.T) {
		h := NewHealthHandler(&fakeDB{status: &postgres.HealthStatus{Status: postgres.StatusUnhealthy}}, nil, "test")
		assert.Equal(t, http.StatusOK, get(h.Health).Code)
	})

	t.Run("ready", func(t *testing.T) {
		h := NewHealthHandler(healthy, nil, "test")
		w := get(h.Ready)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("not ready when unreachable", func(t *testing.T) {
		h := NewHealthHandler(&fakeDB{status: &postgres.HealthStatus{Status: postgres.StatusUnhealthy}}, nil, "test")
		w := get(h.Ready)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"error"`)
	})

	t.Run("not ready before migration", func(t *testing.T) {
		h := NewHealthHandler(&fakeDB{status: &postgres.HealthStatus{Status: postgres.StatusDegraded}}, nil, "test")
		w := get(h.Ready)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"not_migrated"`)
	})

	t.Run("detailed", func(t *testing.T) {
		h := NewHealthHandler(healthy, fakeImports(true), "1.2.3")
		w := get(h.Detailed)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
		assert.Contains(t, w.Body.String(), `"import_running":true`)
	})
}
