package chartimport

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/infra/kis"
)

// NormalizeDomestic converts a domestic period quote into warehouse records.
// Every record carries the requested symbol; rows with an unparsable date
// are dropped.
func NormalizeDomestic(symbol string, resp *kis.DomesticStockPeriodQuote) []*chart.DomesticDailyChart {
	if resp == nil || len(resp.Output2) == 0 {
		return nil
	}

	var summary kis.DomesticStockPeriodQuoteSummary
	if resp.Output1 != nil {
		summary = *resp.Output1
	}
	volTnrt := parseDecimal(summary.VolTnrt)
	lstnStcn := parseInt(summary.LstnStcn)
	htsAvls := parseDecimal(summary.HtsAvls)
	per := parseDecimal(summary.Per)
	eps := parseDecimal(summary.Eps)
	pbr := parseDecimal(summary.Pbr)

	records := make([]*chart.DomesticDailyChart, 0, len(resp.Output2))
	for _, row := range resp.Output2 {
		date, err := chart.ParseDate(strings.TrimSpace(row.StckBsopDate))
		if err != nil {
			log.Warn().Str("symbol", symbol).Str("date", row.StckBsopDate).Msg("Skipping row with invalid date")
			continue
		}

		records = append(records, &chart.DomesticDailyChart{
			Symbol:        symbol,
			Date:          date,
			Open:          parseDecimal(row.StckOprc),
			High:          parseDecimal(row.StckHgpr),
			Low:           parseDecimal(row.StckLwpr),
			Close:         parseDecimal(row.StckClpr),
			Volume:        parseInt(row.AcmlVol),
			TradingAmount: parseDecimal(row.AcmlTrPbmn),
			FlngClsCode:   row.FlngClsCode,
			PrttRate:      parseDecimal(row.PrttRate),
			ModYn:         row.ModYn,
			PrdyVrssSign:  row.PrdyVrssSign,
			PrdyVrss:      parseDecimal(row.PrdyVrss),
			RevlIssuReas:  row.RevlIssuReas,
			VolTnrt:       volTnrt,
			LstnStcn:      lstnStcn,
			HtsAvls:       htsAvls,
			PER:           per,
			EPS:           eps,
			PBR:           pbr,
		})
	}
	return records
}

// NormalizeOverseas converts an overseas period quote into warehouse records
// tagged with the caller's exchange code. The broker does not range-filter,
// so rows before start are dropped here.
func NormalizeOverseas(exchange, symbol string, resp *kis.OverseasStockPeriodQuote, start time.Time) []*chart.OverseasDailyChart {
	if resp == nil || len(resp.Output2) == 0 {
		return nil
	}

	var zdiv string
	if resp.Output1 != nil {
		zdiv = resp.Output1.Zdiv
	}

	records := make([]*chart.OverseasDailyChart, 0, len(resp.Output2))
	for _, row := range resp.Output2 {
		date, err := chart.ParseDate(strings.TrimSpace(row.Xymd))
		if err != nil {
			log.Warn().Str("exchange", exchange).Str("symbol", symbol).Str("date", row.Xymd).Msg("Skipping row with invalid date")
			continue
		}
		if date.Before(start) {
			continue
		}

		records = append(records, &chart.OverseasDailyChart{
			ExchangeCode:  exchange,
			Symbol:        symbol,
			Date:          date,
			Open:          parseDecimal(row.Open),
			High:          parseDecimal(row.High),
			Low:           parseDecimal(row.Low),
			Close:         parseDecimal(row.Clos),
			Volume:        parseInt(row.Tvol),
			TradingAmount: parseDecimal(row.Tamt),
			Sign:          row.Sign,
			Diff:          parseDecimal(row.Diff),
			Rate:          parseDecimal(row.Rate),
			Zdiv:          zdiv,
		})
	}
	return records
}

// parseDecimal never fails: blank or unparsable input is null.
func parseDecimal(s string) decimal.NullDecimal {
	s = cleanNumber(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseInt(s string) *int64 {
	d := parseDecimal(s)
	if !d.Valid {
		return nil
	}
	n := d.Decimal.IntPart()
	return &n
}

func cleanNumber(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
