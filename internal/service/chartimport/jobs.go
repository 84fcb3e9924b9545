package chartimport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
)

// Runner is what JobRunner needs from Service.
type Runner interface {
	Run(ctx context.Context, req Request) (chart.ImportResults, error)
}

// JobRunner runs one import at a time in the background. Each job executes
// on a single goroutine, so the warehouse is still driven serially.
type JobRunner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	runner Runner

	mu      sync.RWMutex
	jobs    map[uuid.UUID]*chart.ImportJob
	running bool
}

func NewJobRunner(ctx context.Context, runner Runner) *JobRunner {
	ctx, cancel := context.WithCancel(ctx)
	return &JobRunner{
		ctx:    ctx,
		cancel: cancel,
		runner: runner,
		jobs:   make(map[uuid.UUID]*chart.ImportJob),
	}
}

// Submit validates req and starts it. ErrJobAlreadyRunning is returned while
// another job is in progress.
func (r *JobRunner) Submit(req Request) (*chart.ImportJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, chart.ErrJobAlreadyRunning
	}
	r.running = true

	job := &chart.ImportJob{
		ID:           uuid.New(),
		Market:       req.Market,
		Exchange:     req.Exchange,
		Symbols:      req.Symbols,
		StartDate:    req.Start,
		EndDate:      req.End,
		SkipExisting: req.SkipExisting,
		ChunkSize:    req.ChunkSize,
		Status:       chart.JobPending,
		CreatedAt:    time.Now(),
	}
	r.jobs[job.ID] = job
	snapshot := *job
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(job.ID, req)

	return &snapshot, nil
}

func (r *JobRunner) run(id uuid.UUID, req Request) {
	defer r.wg.Done()

	started := time.Now()
	r.update(id, func(j *chart.ImportJob) {
		j.Status = chart.JobRunning
		j.StartedAt = &started
	})

	logger := log.With().Str("job_id", id.String()).Str("market", string(req.Market)).Logger()
	logger.Info().Int("symbols", len(req.Symbols)).Msg("Import job started")

	results, err := r.runner.Run(r.ctx, req)

	finished := time.Now()
	summary := results.Summary()
	r.update(id, func(j *chart.ImportJob) {
		j.Results = results
		j.Summary = &summary
		j.FinishedAt = &finished
		if err != nil {
			j.Status = chart.JobFailed
			j.Error = err.Error()
		} else {
			j.Status = chart.JobCompleted
		}
	})

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	if err != nil {
		logger.Error().Err(err).Msg("Import job failed")
		return
	}
	logger.Info().
		Int("succeeded", summary.Succeeded).
		Int("empty", summary.Empty).
		Int("failed", summary.Failed).
		Int("rows", summary.Rows).
		Dur("elapsed", finished.Sub(started)).
		Msg("Import job completed")
}

func (r *JobRunner) update(id uuid.UUID, fn func(*chart.ImportJob)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		fn(j)
	}
}

// Get returns a snapshot of the job.
func (r *JobRunner) Get(id uuid.UUID) (*chart.ImportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, chart.ErrJobNotFound
	}
	snapshot := *j
	if j.Results != nil {
		snapshot.Results = make(chart.ImportResults, len(j.Results))
		for k, v := range j.Results {
			snapshot.Results[k] = v
		}
	}
	return &snapshot, nil
}

// Running reports whether a job is in progress.
func (r *JobRunner) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Stop cancels the running job and waits for it to return.
func (r *JobRunner) Stop() {
	r.cancel()
	r.wg.Wait()
}
