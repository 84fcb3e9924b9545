package chart

import (
	"context"
	"fmt"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/database/postgres"
)

// FetchLogRepository PostgreSQL 수집 로그 저장소 (data.fetch_logs)
type FetchLogRepository struct {
	pool *postgres.Pool
}

var _ chart.FetchLogRepository = (*FetchLogRepository)(nil)

// NewFetchLogRepository 생성자
func NewFetchLogRepository(pool *postgres.Pool) *FetchLogRepository {
	return &FetchLogRepository{pool: pool}
}

// Create 로그 기록 (실행 종료 후 1회)
func (r *FetchLogRepository) Create(ctx context.Context, entry *chart.FetchLog) error {
	query := `
		INSERT INTO data.fetch_logs (
			job_type, source, target_table, records_fetched, records_inserted,
			status, error_message, started_at, finished_at, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		entry.JobType,
		entry.Source,
		entry.TargetTable,
		entry.RecordsFetched,
		entry.RecordsInserted,
		entry.Status,
		entry.ErrorMessage,
		entry.StartedAt,
		entry.FinishedAt,
		entry.DurationMs,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create fetch log: %w", err)
	}

	return nil
}

// GetRecent 최근 로그 조회
func (r *FetchLogRepository) GetRecent(ctx context.Context, limit int) ([]*chart.FetchLog, error) {
	query := `
		SELECT id, job_type, source, target_table, records_fetched, records_inserted,
		       status, error_message, started_at, finished_at, duration_ms, created_at
		FROM data.fetch_logs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent fetch logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*chart.FetchLog, 0, limit)
	for rows.Next() {
		var l chart.FetchLog
		if err := rows.Scan(
			&l.ID,
			&l.JobType,
			&l.Source,
			&l.TargetTable,
			&l.RecordsFetched,
			&l.RecordsInserted,
			&l.Status,
			&l.ErrorMessage,
			&l.StartedAt,
			&l.FinishedAt,
			&l.DurationMs,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan fetch log: %w", err)
		}
		logs = append(logs, &l)
	}

	return logs, rows.Err()
}
