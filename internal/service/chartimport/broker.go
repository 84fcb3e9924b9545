package chartimport

import (
	"context"

	"github.com/kgcrom/cluefin-sub000/internal/infra/kis"
)

// BrokerClient is the slice of the KIS client the importers call. A worker
// owns its BrokerClient for exactly one symbol and closes it afterwards.
type BrokerClient interface {
	GetDomesticStockPeriodQuote(ctx context.Context, p kis.DomesticStockPeriodQuoteParams) (*kis.DomesticStockPeriodQuote, error)
	GetOverseasStockPeriodQuote(ctx context.Context, p kis.OverseasStockPeriodQuoteParams) (*kis.OverseasStockPeriodQuote, error)
	Close() error
}

// ClientFactory produces a fresh worker client per submission.
type ClientFactory func() BrokerClient

type kisBroker struct {
	client *kis.Client
}

// NewKISBroker adapts a *kis.Client.
func NewKISBroker(client *kis.Client) BrokerClient {
	return &kisBroker{client: client}
}

// KISClientFactory clones template for every worker: same credentials and
// token, separate HTTP session.
func KISClientFactory(template *kis.Client) ClientFactory {
	return func() BrokerClient {
		return &kisBroker{client: template.Clone()}
	}
}

func (b *kisBroker) GetDomesticStockPeriodQuote(ctx context.Context, p kis.DomesticStockPeriodQuoteParams) (*kis.DomesticStockPeriodQuote, error) {
	return b.client.DomesticBasicQuote.GetStockPeriodQuote(ctx, p)
}

func (b *kisBroker) GetOverseasStockPeriodQuote(ctx context.Context, p kis.OverseasStockPeriodQuoteParams) (*kis.OverseasStockPeriodQuote, error) {
	return b.client.OverseasBasicQuote.GetStockPeriodQuote(ctx, p)
}

func (b *kisBroker) Close() error {
	return b.client.Close()
}

func domesticParams(symbol, start, end string) kis.DomesticStockPeriodQuoteParams {
	return kis.DomesticStockPeriodQuoteParams{
		MarketDivCode: "J",
		Symbol:        symbol,
		StartDate:     start,
		EndDate:       end,
		PeriodDivCode: "D",
		OrgAdjPrc:     "1",
	}
}

// overseasParams issues a single non-paginated call ending at end.
// TODO: follow KEYB continuation once the response exposes a next key.
func overseasParams(brokerExchange, symbol, end string) kis.OverseasStockPeriodQuoteParams {
	return kis.OverseasStockPeriodQuoteParams{
		Auth:     "",
		Exchange: brokerExchange,
		Symbol:   symbol,
		Gubn:     "0",
		BaseDate: end,
		Modp:     "1",
		Keyb:     "",
	}
}

// isRetryable reports transport faults; business faults fail immediately.
func isRetryable(err error) bool {
	return kis.IsTransportError(err)
}
