// Package chartimport loads daily chart data from KIS into the warehouse.
//
// Batches are processed chunk by chunk. Inside a chunk, symbols are fetched
// concurrently by a bounded pool of workers that share one token bucket;
// every warehouse call happens on the goroutine that called ImportBatch.
package chartimport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/pkg/ratelimit"
)

// MaxWorkersCap bounds the pool regardless of configuration.
const MaxWorkersCap = 10

// Config 적재기 설정
type Config struct {
	RateLimit        float64       // requests per second
	MaxWorkers       int           // clamped to MaxWorkersCap
	RateLimitTimeout time.Duration // per-worker token wait
	WorkerTimeout    time.Duration // per-symbol join timeout
	MaxRetries       int           // ImportOne attempts on transport faults
	RetryBaseDelay   time.Duration // ImportOne backoff base, doubled per attempt
}

// DefaultConfig 기본 설정
func DefaultConfig() *Config {
	return &Config{
		RateLimit:        20,
		MaxWorkers:       3,
		RateLimitTimeout: 30 * time.Second,
		WorkerTimeout:    60 * time.Second,
		MaxRetries:       3,
		RetryBaseDelay:   time.Second,
	}
}

func (c *Config) normalized() Config {
	def := DefaultConfig()
	if c == nil {
		return *def
	}
	out := *c
	if out.RateLimit <= 0 {
		out.RateLimit = def.RateLimit
	}
	if out.MaxWorkers < 1 {
		out.MaxWorkers = 1
	}
	if out.MaxWorkers > MaxWorkersCap {
		out.MaxWorkers = MaxWorkersCap
	}
	if out.RateLimitTimeout <= 0 {
		out.RateLimitTimeout = def.RateLimitTimeout
	}
	if out.WorkerTimeout <= 0 {
		out.WorkerTimeout = def.WorkerTimeout
	}
	if out.MaxRetries < 1 {
		out.MaxRetries = def.MaxRetries
	}
	if out.RetryBaseDelay <= 0 {
		out.RetryBaseDelay = def.RetryBaseDelay
	}
	return out
}

// =============================================================================
// Batch options
// =============================================================================

// DefaultChunkSize is the number of symbols fetched between warehouse writes.
const DefaultChunkSize = 10

// ProgressFunc is called once per chunk on the orchestrating goroutine.
type ProgressFunc func(processed, total int, lastSymbol string)

type batchOptions struct {
	skipExisting bool
	chunkSize    int
	progress     ProgressFunc
}

type BatchOption func(*batchOptions)

// WithSkipExisting skips symbols whose window is already stored (default true).
func WithSkipExisting(skip bool) BatchOption {
	return func(o *batchOptions) { o.skipExisting = skip }
}

func WithChunkSize(n int) BatchOption {
	return func(o *batchOptions) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

func WithProgress(fn ProgressFunc) BatchOption {
	return func(o *batchOptions) { o.progress = fn }
}

func applyOptions(opts []BatchOption) batchOptions {
	o := batchOptions{skipExisting: true, chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// =============================================================================
// Engine shared by the domestic and overseas importers
// =============================================================================

type engine struct {
	cfg       Config
	limiter   *ratelimit.TokenBucket
	template  BrokerClient
	newClient ClientFactory
	sleep     func(ctx context.Context, d time.Duration) error
}

func newEngine(template BrokerClient, factory ClientFactory, cfg *Config) *engine {
	c := cfg.normalized()
	return &engine{
		cfg:       c,
		limiter:   ratelimit.ForRequestsPerSecond(c.RateLimit),
		template:  template,
		newClient: factory,
		sleep:     sleepContext,
	}
}

// MaxWorkers is the effective pool size.
func (e *engine) MaxWorkers() int {
	return e.cfg.MaxWorkers
}

func (e *engine) acquire(ctx context.Context) bool {
	return e.limiter.WaitForTokens(ctx, 1, e.cfg.RateLimitTimeout)
}

type fetchFunc[T any] func(ctx context.Context, client BrokerClient, symbol string) chart.FetchResult[T]

// runChunk fetches symbols with at most MaxWorkers in flight and returns the
// results in completion order.
func runChunk[T any](ctx context.Context, e *engine, symbols []string, fetch fetchFunc[T]) []chart.FetchResult[T] {
	done := make(chan chart.FetchResult[T], len(symbols))

	var g errgroup.Group
	g.SetLimit(e.cfg.MaxWorkers)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			done <- runWorker(ctx, e, symbol, fetch)
			return nil
		})
	}
	_ = g.Wait()
	close(done)

	results := make([]chart.FetchResult[T], 0, len(symbols))
	for r := range done {
		results = append(results, r)
	}
	return results
}

// runWorker gives one symbol its own client and turns panics and overruns
// into failures. A fetch that ignores cancellation keeps running in the
// background after the timeout.
func runWorker[T any](ctx context.Context, e *engine, symbol string, fetch fetchFunc[T]) chart.FetchResult[T] {
	taskCtx, cancel := context.WithTimeout(ctx, e.cfg.WorkerTimeout)
	defer cancel()

	out := make(chan chart.FetchResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("symbol", symbol).Interface("panic", r).Msg("Worker panicked")
				out <- chart.NewFetchFailure[T](symbol, fmt.Errorf("%w: %v", chart.ErrWorkerPanic, r))
			}
		}()

		client := e.newClient()
		defer func() {
			if err := client.Close(); err != nil {
				log.Debug().Err(err).Str("symbol", symbol).Msg("Close worker client")
			}
		}()

		out <- fetch(taskCtx, client, symbol)
	}()

	select {
	case r := <-out:
		return r
	case <-taskCtx.Done():
		log.Warn().Str("symbol", symbol).Dur("timeout", e.cfg.WorkerTimeout).Msg("Worker did not finish in time")
		return chart.NewFetchFailure[T](symbol, fmt.Errorf("%w after %s", chart.ErrWorkerTimeout, e.cfg.WorkerTimeout))
	}
}

// batch describes one ImportBatch run for runBatch.
type batch[T any] struct {
	logger  zerolog.Logger
	symbols []string
	blanks  int // blank inputs, reported once under ""
	opts    batchOptions
	covered func(ctx context.Context, symbols []string) (map[string]bool, error)
	fetch   fetchFunc[T]
	save    func(ctx context.Context, symbol string, data *T) (int, error)
}

// runBatch drives chunks sequentially. All warehouse calls (coverage lookup,
// save) happen here, never in workers. A coverage lookup error or cancellation
// aborts the batch between chunks and the results gathered so far are
// returned with it.
func runBatch[T any](ctx context.Context, e *engine, b batch[T]) (chart.ImportResults, error) {
	results := make(chart.ImportResults, len(b.symbols)+1)
	total := len(b.symbols)

	if b.blanks > 0 {
		b.logger.Warn().Int("count", b.blanks).Msg("Blank symbols in input, marked failed")
		results[""] = chart.ResultFailed
	}

	for i := 0; i < total; i += b.opts.chunkSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		chunk := b.symbols[i:min(i+b.opts.chunkSize, total)]

		toFetch := chunk
		if b.opts.skipExisting {
			exists, err := b.covered(ctx, chunk)
			if err != nil {
				return results, fmt.Errorf("check existing data: %w", err)
			}
			toFetch = make([]string, 0, len(chunk))
			for _, symbol := range chunk {
				if exists[symbol] {
					b.logger.Info().Str("symbol", symbol).Msg("Data already exists, skipping")
					results[symbol] = 0
					continue
				}
				toFetch = append(toFetch, symbol)
			}
		}

		if len(toFetch) > 0 {
			// A started chunk runs to completion and is stored even if ctx is
			// cancelled meanwhile; the worker timeout still bounds it.
			chunkCtx := context.WithoutCancel(ctx)
			for _, r := range runChunk(chunkCtx, e, toFetch, b.fetch) {
				results[r.Symbol] = persist(chunkCtx, b, r)
			}
		}

		if b.opts.progress != nil {
			b.opts.progress(i+len(chunk), total, chunk[len(chunk)-1])
		}
	}

	return results, nil
}

func countBlank(symbols []string) int {
	n := 0
	for _, s := range symbols {
		if strings.TrimSpace(s) == "" {
			n++
		}
	}
	return n
}

func persist[T any](ctx context.Context, b batch[T], r chart.FetchResult[T]) int {
	if !r.Success() {
		return chart.ResultFailed
	}
	n, err := b.save(ctx, r.Symbol, r.Data)
	if err != nil {
		b.logger.Error().Err(err).Str("symbol", r.Symbol).Msg("Failed to store chart data")
		return chart.ResultFailed
	}
	return n
}

// retry calls fn up to MaxRetries times. Only transport faults are retried,
// waiting RetryBaseDelay * 2^attempt between attempts.
func retry[T any](ctx context.Context, e *engine, logger zerolog.Logger, fn func(ctx context.Context) (*T, error)) (*T, error) {
	delays := &backoff.Backoff{
		Min:    e.cfg.RetryBaseDelay,
		Max:    e.cfg.RetryBaseDelay << e.cfg.MaxRetries,
		Factor: 2,
	}

	var lastErr error
	for attempt := 0; attempt < e.cfg.MaxRetries; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryable(err) {
			logger.Error().Err(err).Msg("API error fetching period quote (no retry)")
			return nil, err
		}
		if attempt == e.cfg.MaxRetries-1 {
			break
		}

		wait := delays.ForAttempt(float64(attempt))
		logger.Warn().Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", e.cfg.MaxRetries).
			Dur("backoff", wait).
			Msg("Network error fetching period quote, retrying")
		if err := e.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	logger.Error().Err(lastErr).Int("attempts", e.cfg.MaxRetries).Msg("Giving up after network errors")
	return nil, fmt.Errorf("after %d attempts: %w", e.cfg.MaxRetries, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
