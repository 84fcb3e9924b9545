package kis

import (
	"context"
	"net/url"
)

const (
	pathOverseasDailyPrice = "/uapi/overseas-price/v1/quotations/dailyprice"
	trOverseasDailyPrice   = "HHDFS76240000"
)

// OverseasBasicQuote 해외주식 기본시세
type OverseasBasicQuote struct {
	rest *RESTClient
}

// OverseasStockPeriodQuoteParams 해외주식 기간별시세
type OverseasStockPeriodQuoteParams struct {
	Auth     string // AUTH (blank)
	Exchange string // EXCD, broker code (NYS, NAS, ...)
	Symbol   string // SYMB
	Gubn     string // GUBN (0: 일, 1: 주, 2: 월)
	BaseDate string // BYMD, rows are returned backwards from this date
	Modp     string // MODP (1: 수정주가 반영)
	Keyb     string // KEYB continuation key, blank on the first call
}

type OverseasStockPeriodQuote struct {
	Envelope
	Output1 *OverseasStockPeriodQuoteSummary `json:"output1"`
	Output2 []OverseasStockPeriodQuoteItem   `json:"output2"`
}

type OverseasStockPeriodQuoteSummary struct {
	Rsym string `json:"rsym"` // 실시간조회종목코드
	Zdiv string `json:"zdiv"` // 소수점자리수
	Nrec string `json:"nrec"` // 전일종가
}

type OverseasStockPeriodQuoteItem struct {
	Xymd string `json:"xymd"` // 일자
	Clos string `json:"clos"`
	Sign string `json:"sign"`
	Diff string `json:"diff"`
	Rate string `json:"rate"`
	Open string `json:"open"`
	High string `json:"high"`
	Low  string `json:"low"`
	Tvol string `json:"tvol"`
	Tamt string `json:"tamt"`
}

// GetStockPeriodQuote fetches daily candles for one overseas symbol ending at
// BaseDate.
func (q *OverseasBasicQuote) GetStockPeriodQuote(ctx context.Context, p OverseasStockPeriodQuoteParams) (*OverseasStockPeriodQuote, error) {
	params := url.Values{}
	params.Set("AUTH", p.Auth)
	params.Set("EXCD", p.Exchange)
	params.Set("SYMB", p.Symbol)
	params.Set("GUBN", p.Gubn)
	params.Set("BYMD", p.BaseDate)
	params.Set("MODP", p.Modp)
	params.Set("KEYB", p.Keyb)

	var out OverseasStockPeriodQuote
	if err := q.rest.get(ctx, pathOverseasDailyPrice, trOverseasDailyPrice, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
