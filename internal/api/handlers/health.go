package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kgcrom/cluefin-sub000/internal/api/response"
	"github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres"
)

// DatabaseHealth is satisfied by *postgres.Pool.
type DatabaseHealth interface {
	Health(ctx context.Context) *postgres.HealthStatus
}

// ImportStatus is satisfied by *chartimport.JobRunner.
type ImportStatus interface {
	Running() bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db        DatabaseHealth
	imports   ImportStatus
	startTime time.Time
	version   string
}

func NewHealthHandler(db DatabaseHealth, imports ImportStatus, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		imports:   imports,
		startTime: time.Now(),
		version:   version,
	}
}

// SimpleHealthResponse represents a simple health check response
type SimpleHealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents a readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

// DetailedHealthResponse represents detailed health information
type DetailedHealthResponse struct {
	Status        string                 `json:"status"`
	Version       string                 `json:"version"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	ImportRunning bool                   `json:"import_running"`
	Timestamp     time.Time              `json:"timestamp"`
	Database      *postgres.HealthStatus `json:"database"`
}

// Health is the liveness check.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, SimpleHealthResponse{
		Status:    postgres.StatusHealthy,
		Timestamp: time.Now(),
	})
}

// Ready requires a reachable, migrated warehouse.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	db := h.db.Health(c.Request.Context())

	resp := ReadyResponse{
		Status:    "ready",
		Timestamp: time.Now(),
		Checks:    map[string]string{"database": "ok"},
	}
	statusCode := http.StatusOK

	switch {
	case db.Status == postgres.StatusUnhealthy:
		resp.Checks["database"] = "error"
		resp.Message = "Database connection failed"
	case !db.Migrated:
		resp.Checks["database"] = "not_migrated"
		resp.Message = "Warehouse schema missing"
	}
	if resp.Message != "" {
		resp.Status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, resp)
}

// Detailed GET /api/v1/health/detailed
func (h *HealthHandler) Detailed(c *gin.Context) {
	db := h.db.Health(c.Request.Context())

	response.Success(c, DetailedHealthResponse{
		Status:        db.Status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		ImportRunning: h.imports != nil && h.imports.Running(),
		Timestamp:     time.Now(),
		Database:      db,
	})
}
