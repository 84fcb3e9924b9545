package chartimport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/kis"
)

// fakeBroker records calls; every worker client handed out by factory() is
// the same instance.
type fakeBroker struct {
	mu            sync.Mutex
	domesticCalls []kis.DomesticStockPeriodQuoteParams
	overseasCalls []kis.OverseasStockPeriodQuoteParams

	domestic func(p kis.DomesticStockPeriodQuoteParams) (*kis.DomesticStockPeriodQuote, error)
	overseas func(p kis.OverseasStockPeriodQuoteParams) (*kis.OverseasStockPeriodQuote, error)

	created  int32
	closed   int32
	inFlight int32
	maxSeen  int32
	delay    time.Duration
}

func (f *fakeBroker) factory() ClientFactory {
	return func() BrokerClient {
		atomic.AddInt32(&f.created, 1)
		return f
	}
}

func (f *fakeBroker) enter() func() {
	n := atomic.AddInt32(&f.inFlight, 1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { atomic.AddInt32(&f.inFlight, -1) }
}

func (f *fakeBroker) GetDomesticStockPeriodQuote(ctx context.Context, p kis.DomesticStockPeriodQuoteParams) (*kis.DomesticStockPeriodQuote, error) {
	defer f.enter()()
	f.mu.Lock()
	f.domesticCalls = append(f.domesticCalls, p)
	f.mu.Unlock()
	return f.domestic(p)
}

func (f *fakeBroker) GetOverseasStockPeriodQuote(ctx context.Context, p kis.OverseasStockPeriodQuoteParams) (*kis.OverseasStockPeriodQuote, error) {
	defer f.enter()()
	f.mu.Lock()
	f.overseasCalls = append(f.overseasCalls, p)
	f.mu.Unlock()
	return f.overseas(p)
}

func (f *fakeBroker) Close() error {
	atomic.AddInt32(&f.closed, 1)
	return nil
}

func (f *fakeBroker) domesticSymbols() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.domesticCalls))
	for _, c := range f.domesticCalls {
		out = append(out, c.Symbol)
	}
	return out
}

func (f *fakeBroker) overseasCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.overseasCalls)
}

// fakeDomesticRepo is only ever called from the orchestrating goroutine, so
// it carries no locking.
type fakeDomesticRepo struct {
	existing     map[string]bool
	coveredErr   error
	insertErr    map[string]error
	inserted     map[string][]*chart.DomesticDailyChart
	coveredCalls int
}

func newFakeDomesticRepo() *fakeDomesticRepo {
	return &fakeDomesticRepo{
		existing:  map[string]bool{},
		insertErr: map[string]error{},
		inserted:  map[string][]*chart.DomesticDailyChart{},
	}
}

func (r *fakeDomesticRepo) InsertDomesticStockDailyChart(ctx context.Context, symbol string, records []*chart.DomesticDailyChart) (int, error) {
	if err := r.insertErr[symbol]; err != nil {
		return 0, err
	}
	r.inserted[symbol] = append(r.inserted[symbol], records...)
	r.existing[symbol] = true
	return len(records), nil
}

func (r *fakeDomesticRepo) CheckDomesticStockDataExists(ctx context.Context, symbol, start, end string) (bool, error) {
	r.coveredCalls++
	return r.existing[symbol], r.coveredErr
}

func (r *fakeDomesticRepo) CheckDomesticStockDataExistsBatch(ctx context.Context, symbols []string, start, end string) (map[string]bool, error) {
	r.coveredCalls++
	if r.coveredErr != nil {
		return nil, r.coveredErr
	}
	out := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		out[s] = r.existing[s]
	}
	return out, nil
}

type fakeOverseasRepo struct {
	existing map[string]bool
	inserted map[string][]*chart.OverseasDailyChart
}

func newFakeOverseasRepo() *fakeOverseasRepo {
	return &fakeOverseasRepo{
		existing: map[string]bool{},
		inserted: map[string][]*chart.OverseasDailyChart{},
	}
}

func (r *fakeOverseasRepo) key(exchange, symbol string) string {
	return exchange + ":" + symbol
}

func (r *fakeOverseasRepo) InsertOverseasStockDailyChart(ctx context.Context, exchange, symbol string, records []*chart.OverseasDailyChart) (int, error) {
	k := r.key(exchange, symbol)
	r.inserted[k] = append(r.inserted[k], records...)
	r.existing[k] = true
	return len(records), nil
}

func (r *fakeOverseasRepo) CheckOverseasStockDataExists(ctx context.Context, exchange, symbol, start, end string) (bool, error) {
	return r.existing[r.key(exchange, symbol)], nil
}

func (r *fakeOverseasRepo) CheckOverseasStockDataExistsBatch(ctx context.Context, exchange string, symbols []string, start, end string) (map[string]bool, error) {
	out := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		out[s] = r.existing[r.key(exchange, s)]
	}
	return out, nil
}

// domesticRows returns n daily rows dated 20240101, 20240102, ...
func domesticRows(n int) *kis.DomesticStockPeriodQuote {
	resp := &kis.DomesticStockPeriodQuote{
		Envelope: kis.Envelope{RtCd: "0"},
		Output1:  &kis.DomesticStockPeriodQuoteSummary{Per: "12.3", LstnStcn: "1000"},
	}
	for i := 0; i < n; i++ {
		resp.Output2 = append(resp.Output2, kis.DomesticStockPeriodQuoteItem{
			StckBsopDate: fmt.Sprintf("202401%02d", i+1),
			StckOprc:     "70000",
			StckHgpr:     "71000",
			StckLwpr:     "69000",
			StckClpr:     "70500",
			AcmlVol:      "1000000",
		})
	}
	return resp
}

func testConfig() *Config {
	return &Config{
		RateLimit:        1000,
		MaxWorkers:       2,
		RateLimitTimeout: time.Second,
		WorkerTimeout:    5 * time.Second,
		MaxRetries:       3,
		RetryBaseDelay:   time.Second,
	}
}

func networkErr() error {
	return &kis.NetworkError{Op: "execute request", Err: fmt.Errorf("dial tcp: connection refused")}
}

func businessErr() error {
	return &kis.APIError{Status: 200, RtCd: "1", MsgCd: "EGW00201", Message: "초당 거래건수를 초과하였습니다."}
}
