package postgres

import (
	"context"
	"fmt"
	"time"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is reported by /health/ready.
type HealthStatus struct {
	Status       string    `json:"status"`
	ResponseTime string    `json:"response_time"`
	Migrated     bool      `json:"migrated"` // data schema present
	ActiveConns  int32     `json:"active_conns"`
	IdleConns    int32     `json:"idle_conns"`
	TotalConns   int32     `json:"total_conns"`
	MaxConns     int32     `json:"max_conns"`
	CheckedAt    time.Time `json:"checked_at"`
	Error        string    `json:"error,omitempty"`
}

// Health pings the database and reports pool usage. A reachable database
// without the warehouse schema, or a pool with every connection acquired,
// is degraded.
func (p *Pool) Health(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		CheckedAt: start,
		Status:    StatusHealthy,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := p.Ping(checkCtx); err != nil {
		status.Status = StatusUnhealthy
		status.Error = fmt.Sprintf("ping failed: %v", err)
		status.ResponseTime = time.Since(start).String()
		return status
	}

	err := p.QueryRow(checkCtx,
		`SELECT EXISTS (SELECT 1 FROM pg_namespace WHERE nspname = $1)`,
		WarehouseSchema,
	).Scan(&status.Migrated)
	if err != nil {
		status.Status = StatusUnhealthy
		status.Error = fmt.Sprintf("schema check failed: %v", err)
		status.ResponseTime = time.Since(start).String()
		return status
	}

	stats := p.Stat()
	status.ActiveConns = stats.AcquiredConns()
	status.IdleConns = stats.IdleConns()
	status.TotalConns = stats.TotalConns()
	status.MaxConns = stats.MaxConns()
	status.ResponseTime = time.Since(start).String()

	switch {
	case !status.Migrated:
		status.Status = StatusDegraded
		status.Error = "schema " + WarehouseSchema + " missing"
	case status.ActiveConns >= status.MaxConns:
		status.Status = StatusDegraded
		status.Error = "connection pool exhausted"
	}

	return status
}
