package chartimport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
)

// Request describes one import run as issued by the CLI or the API.
type Request struct {
	Market       chart.Market
	Exchange     string // overseas only
	Symbols      []string
	Start        string
	End          string
	SkipExisting bool
	ChunkSize    int
	Progress     ProgressFunc
}

// Validate checks the request shape. Window limits specific to a market are
// enforced by the importers.
func (r Request) Validate() error {
	switch r.Market {
	case chart.MarketDomestic:
	case chart.MarketOverseas:
		if _, err := chart.NormalizeExchange(r.Exchange); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown market %q", r.Market)
	}
	if len(r.Symbols) == 0 {
		return fmt.Errorf("%w: no symbols given", chart.ErrInvalidSymbol)
	}
	return chart.ValidateWindow(r.Start, r.End)
}

// Service runs import requests and records a fetch log for each.
type Service struct {
	domestic  *DomesticImporter
	overseas  *OverseasImporter
	fetchLogs chart.FetchLogRepository
}

// NewService 서비스 생성. fetchLogs may be nil.
func NewService(domestic *DomesticImporter, overseas *OverseasImporter, fetchLogs chart.FetchLogRepository) *Service {
	return &Service{
		domestic:  domestic,
		overseas:  overseas,
		fetchLogs: fetchLogs,
	}
}

// Run imports the request. Domestic windows longer than the endpoint allows
// are split into consecutive sub-windows and the results merged.
func (s *Service) Run(ctx context.Context, req Request) (chart.ImportResults, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	opts := []BatchOption{WithSkipExisting(req.SkipExisting), WithChunkSize(req.ChunkSize)}
	if req.Progress != nil {
		opts = append(opts, WithProgress(req.Progress))
	}

	var (
		results chart.ImportResults
		err     error
		table   string
	)
	switch req.Market {
	case chart.MarketDomestic:
		table = chart.TableDomesticDailyChart
		results, err = s.runDomestic(ctx, req, opts)
	case chart.MarketOverseas:
		table = chart.TableOverseasDailyChart
		results, err = s.overseas.ImportBatch(ctx, req.Exchange, req.Symbols, req.Start, req.End, opts...)
	}

	s.recordFetchLog(ctx, req, table, results, err, startedAt)
	return results, err
}

func (s *Service) runDomestic(ctx context.Context, req Request, opts []BatchOption) (chart.ImportResults, error) {
	windows, err := chart.SplitWindow(req.Start, req.End, chart.MaxDomesticWeekdays)
	if err != nil {
		return nil, err
	}

	results := chart.ImportResults{}
	for i, w := range windows {
		if len(windows) > 1 {
			log.Info().
				Int("window", i+1).
				Int("windows", len(windows)).
				Str("start", w.Start).
				Str("end", w.End).
				Msg("Importing sub-window")
		}
		part, err := s.domestic.ImportBatch(ctx, req.Symbols, w.Start, w.End, opts...)
		results.Merge(part)
		if err != nil {
			return results, err
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *Service) recordFetchLog(ctx context.Context, req Request, table string, results chart.ImportResults, runErr error, startedAt time.Time) {
	if s.fetchLogs == nil {
		return
	}

	finished := time.Now()
	duration := int(finished.Sub(startedAt).Milliseconds())
	summary := results.Summary()

	entry := &chart.FetchLog{
		JobType:         "chart_" + string(req.Market),
		Source:          "kis",
		TargetTable:     table,
		RecordsFetched:  summary.Total,
		RecordsInserted: summary.Rows,
		Status:          string(chart.JobCompleted),
		StartedAt:       startedAt,
		FinishedAt:      &finished,
		DurationMs:      &duration,
	}

	var msgs []string
	if runErr != nil {
		entry.Status = string(chart.JobFailed)
		msgs = append(msgs, runErr.Error())
	}
	if summary.Failed > 0 {
		msgs = append(msgs, fmt.Sprintf("%d symbols failed", summary.Failed))
	}
	if len(msgs) > 0 {
		m := strings.Join(msgs, "; ")
		entry.ErrorMessage = &m
	}

	// A cancelled run still gets its log row.
	if err := s.fetchLogs.Create(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn().Err(err).Msg("Failed to record fetch log")
	}
}
