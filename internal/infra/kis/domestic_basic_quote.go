package kis

import (
	"context"
	"net/url"
)

const (
	pathDomesticDailyItemChartPrice = "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice"
	trDomesticDailyItemChartPrice   = "FHKST03010100"
)

// DomesticBasicQuote 국내주식 기본시세
type DomesticBasicQuote struct {
	rest *RESTClient
}

// DomesticStockPeriodQuoteParams 국내주식기간별시세(일/주/월/년)
type DomesticStockPeriodQuoteParams struct {
	MarketDivCode string // FID_COND_MRKT_DIV_CODE (J: KRX)
	Symbol        string // FID_INPUT_ISCD
	StartDate     string // FID_INPUT_DATE_1
	EndDate       string // FID_INPUT_DATE_2
	PeriodDivCode string // FID_PERIOD_DIV_CODE (D/W/M/Y)
	OrgAdjPrc     string // FID_ORG_ADJ_PRC
}

type DomesticStockPeriodQuote struct {
	Envelope
	Output1 *DomesticStockPeriodQuoteSummary `json:"output1"`
	Output2 []DomesticStockPeriodQuoteItem   `json:"output2"`
}

type DomesticStockPeriodQuoteSummary struct {
	PrdyVrss     string `json:"prdy_vrss"`
	PrdyVrssSign string `json:"prdy_vrss_sign"`
	PrdyCtrt     string `json:"prdy_ctrt"`
	StckPrdyClpr string `json:"stck_prdy_clpr"`
	AcmlVol      string `json:"acml_vol"`
	AcmlTrPbmn   string `json:"acml_tr_pbmn"`
	HtsKorIsnm   string `json:"hts_kor_isnm"` // 종목명
	StckPrpr     string `json:"stck_prpr"`
	StckShrnIscd string `json:"stck_shrn_iscd"`
	VolTnrt      string `json:"vol_tnrt"`  // 거래량 회전율
	LstnStcn     string `json:"lstn_stcn"` // 상장 주수
	HtsAvls      string `json:"hts_avls"`  // 시가총액
	Per          string `json:"per"`
	Eps          string `json:"eps"`
	Pbr          string `json:"pbr"`
}

type DomesticStockPeriodQuoteItem struct {
	StckBsopDate string `json:"stck_bsop_date"` // 영업 일자
	StckClpr     string `json:"stck_clpr"`
	StckOprc     string `json:"stck_oprc"`
	StckHgpr     string `json:"stck_hgpr"`
	StckLwpr     string `json:"stck_lwpr"`
	AcmlVol      string `json:"acml_vol"`
	AcmlTrPbmn   string `json:"acml_tr_pbmn"`
	FlngClsCode  string `json:"flng_cls_code"`
	PrttRate     string `json:"prtt_rate"`
	ModYn        string `json:"mod_yn"`
	PrdyVrssSign string `json:"prdy_vrss_sign"`
	PrdyVrss     string `json:"prdy_vrss"`
	RevlIssuReas string `json:"revl_issu_reas"`
}

// GetStockPeriodQuote fetches daily/weekly/monthly candles for one symbol.
// The endpoint returns at most 100 rows per call.
func (q *DomesticBasicQuote) GetStockPeriodQuote(ctx context.Context, p DomesticStockPeriodQuoteParams) (*DomesticStockPeriodQuote, error) {
	params := url.Values{}
	params.Set("FID_COND_MRKT_DIV_CODE", p.MarketDivCode)
	params.Set("FID_INPUT_ISCD", p.Symbol)
	params.Set("FID_INPUT_DATE_1", p.StartDate)
	params.Set("FID_INPUT_DATE_2", p.EndDate)
	params.Set("FID_PERIOD_DIV_CODE", p.PeriodDivCode)
	params.Set("FID_ORG_ADJ_PRC", p.OrgAdjPrc)

	var out DomesticStockPeriodQuote
	if err := q.rest.get(ctx, pathDomesticDailyItemChartPrice, trDomesticDailyItemChartPrice, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
