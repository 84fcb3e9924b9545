package chartimport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgcrom/cluefin-sub000/internal/infra/kis"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  string
	}{
		{"72700", true, "72700"},
		{" 184.4000 ", true, "184.4"},
		{"1,234,567", true, "1234567"},
		{"-0.52", true, "-0.52"},
		{"", false, ""},
		{"   ", false, ""},
		{"N/A", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseDecimal(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Decimal.String())
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, int64(15703560), *parseInt("15703560"))
	assert.Equal(t, int64(12), *parseInt("12.0"))
	assert.Nil(t, parseInt(""))
	assert.Nil(t, parseInt("abc"))
}

func TestNormalizeDomestic(t *testing.T) {
	t.Run("broadcasts summary and copies flags", func(t *testing.T) {
		resp := &kis.DomesticStockPeriodQuote{
			Output1: &kis.DomesticStockPeriodQuoteSummary{
				VolTnrt: "0.26", LstnStcn: "5969782550", HtsAvls: "4340033", Per: "36.99", Eps: "1965.00", Pbr: "1.43",
			},
			Output2: []kis.DomesticStockPeriodQuoteItem{
				{StckBsopDate: "20240131", StckOprc: "73400", StckClpr: "72700", AcmlVol: "15703560",
					FlngClsCode: "00", ModYn: "N", PrdyVrssSign: "5", PrdyVrss: "-1000", PrttRate: "0.00"},
				{StckBsopDate: "20240130", StckOprc: "", StckClpr: "bad"},
			},
		}

		records := NormalizeDomestic("005930", resp)
		require.Len(t, records, 2)

		r := records[0]
		assert.Equal(t, "005930", r.Symbol)
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), r.Date)
		assert.Equal(t, "72700", r.Close.Decimal.String())
		assert.Equal(t, int64(15703560), *r.Volume)
		assert.Equal(t, "00", r.FlngClsCode)
		assert.Equal(t, "5", r.PrdyVrssSign)
		assert.Equal(t, "-1000", r.PrdyVrss.Decimal.String())

		for _, rec := range records {
			assert.Equal(t, "36.99", rec.PER.Decimal.String())
			assert.Equal(t, int64(5969782550), *rec.LstnStcn)
		}

		assert.False(t, records[1].Open.Valid)
		assert.False(t, records[1].Close.Valid)
		assert.Nil(t, records[1].Volume)
	})

	t.Run("missing summary leaves summary fields null", func(t *testing.T) {
		records := NormalizeDomestic("005930", &kis.DomesticStockPeriodQuote{
			Output2: []kis.DomesticStockPeriodQuoteItem{{StckBsopDate: "20240131"}},
		})
		require.Len(t, records, 1)
		assert.False(t, records[0].PER.Valid)
		assert.Nil(t, records[0].LstnStcn)
	})

	t.Run("rows with bad dates dropped", func(t *testing.T) {
		records := NormalizeDomestic("005930", &kis.DomesticStockPeriodQuote{
			Output2: []kis.DomesticStockPeriodQuoteItem{
				{StckBsopDate: "20240131"},
				{StckBsopDate: ""},
				{StckBsopDate: "20241341"},
			},
		})
		assert.Len(t, records, 1)
	})

	t.Run("symbol comes from the request", func(t *testing.T) {
		records := NormalizeDomestic("000660", &kis.DomesticStockPeriodQuote{
			Output1: &kis.DomesticStockPeriodQuoteSummary{StckShrnIscd: "005930"},
			Output2: []kis.DomesticStockPeriodQuoteItem{{StckBsopDate: "20240131"}},
		})
		assert.Equal(t, "000660", records[0].Symbol)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, NormalizeDomestic("005930", nil))
		assert.Empty(t, NormalizeDomestic("005930", &kis.DomesticStockPeriodQuote{}))
	})
}

func TestNormalizeOverseas(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	resp := &kis.OverseasStockPeriodQuote{
		Output2: []kis.OverseasStockPeriodQuoteItem{
			{Xymd: "20240103", Clos: "184.2500", Tvol: "58414460", Diff: "-1.3100", Rate: "-0.71", Sign: "5"},
			{Xymd: "20240102", Clos: "185.6400"},
			{Xymd: "20231229", Clos: "192.5300"},
			{Xymd: "garbage"},
		},
	}

	records := NormalizeOverseas("NASDAQ", "AAPL", resp, start)
	require.Len(t, records, 2)
	assert.Equal(t, "NASDAQ", records[0].ExchangeCode)
	assert.Equal(t, "184.25", records[0].Close.Decimal.String())
	assert.Equal(t, int64(58414460), *records[0].Volume)
	assert.Equal(t, "-0.71", records[0].Rate.Decimal.String())
	assert.Equal(t, "", records[0].Zdiv)
	assert.Equal(t, start, records[1].Date)
}
