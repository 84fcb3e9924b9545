package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/pkg/config"
	"github.com/kgcrom/cluefin-sub000/internal/service/chartimport"
)

func TestCollectDomestic(t *testing.T) {
	t.Run("args only", func(t *testing.T) {
		got, err := collectDomestic([]string{"000660", " 005930", "000660"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"000660", "005930"}, got)
	})

	t.Run("stdin keeps six digit codes", func(t *testing.T) {
		stdin := strings.NewReader("005930\n\n  035720  \nAAPL\n12345\n000660\n")
		got, err := collectDomestic([]string{"005930"}, stdin)
		require.NoError(t, err)
		assert.Equal(t, []string{"000660", "005930", "035720"}, got)
	})

	t.Run("nothing", func(t *testing.T) {
		got, err := collectDomestic(nil, strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestCollectOverseas(t *testing.T) {
	got, err := collectOverseas([]string{"msft", " aapl "}, strings.NewReader("AAPL\nnvda\n\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, got)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, chart.ImportResults{
		"005930": 21,
		"000660": 19,
		"035720": 0,
		"999999": chart.ResultFailed,
		"888888": chart.ResultFailed,
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, []string{"Succeeded", "Empty/Skipped", "Failed", "Rows"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2", "1", "2", "40"}, strings.Fields(lines[1]))
	assert.Contains(t, buf.String(), "Failed (2): 888888 999999")
}

func TestPrintSummary_NoFailures(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, chart.ImportResults{"AAPL": 4})
	assert.NotContains(t, buf.String(), "Failed (")
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	printPlan(&buf, chartimport.Request{
		Market:       chart.MarketOverseas,
		Exchange:     " nasdaq",
		Symbols:      []string{"AAPL", "MSFT"},
		Start:        "20240101",
		End:          "20240131",
		SkipExisting: true,
		ChunkSize:    10,
	})

	out := buf.String()
	assert.Contains(t, out, "NASDAQ")
	assert.Contains(t, out, "20240101 ~ 20240131")
	assert.Regexp(t, `Symbols\s+2`, out)
	assert.Regexp(t, `Skip existing\s+true`, out)
}

func TestProgressPrinter(t *testing.T) {
	t.Run("plain output prints a line per update", func(t *testing.T) {
		var buf bytes.Buffer
		p := newProgressPrinter(&buf, false)
		p.update(10, 40, "005930")
		p.update(40, 40, "000660")
		p.done()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "[10/40]  25%  005930")
		assert.Contains(t, lines[1], "[40/40] 100%  000660")
	})

	t.Run("terminal output redraws one line", func(t *testing.T) {
		var buf bytes.Buffer
		p := newProgressPrinter(&buf, true)
		p.update(1, 2, "A")
		p.update(2, 2, "B")
		p.done()

		out := buf.String()
		assert.Equal(t, 2, strings.Count(out, "\r"))
		assert.True(t, strings.HasSuffix(out, "\n"))
		assert.Equal(t, 1, strings.Count(out, "\n"))
	})

	t.Run("done without updates writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		newProgressPrinter(&buf, true).done()
		assert.Empty(t, buf.String())
	})
}

func TestPrintStats(t *testing.T) {
	first := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	printStats(&buf, &chart.WarehouseStats{Tables: []chart.TableStats{
		{Table: chart.TableDomesticDailyChart, Rows: 1500, Symbols: 2, FirstDate: &first, LastDate: &last},
		{Table: chart.TableOverseasDailyChart},
	}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{chart.TableDomesticDailyChart, "1500", "2", "20210104", "20240131", "-"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{chart.TableOverseasDailyChart, "0", "0", "-", "-", "-"}, strings.Fields(lines[2]))
}

func TestPrintFetchLogs(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		printFetchLogs(&buf, nil)
		assert.Equal(t, "no import runs recorded\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		duration := 93_400
		msg := "1 symbols failed"
		var buf bytes.Buffer
		printFetchLogs(&buf, []*chart.FetchLog{{
			ID:              7,
			JobType:         "chart_domestic",
			Status:          "completed",
			RecordsFetched:  3,
			RecordsInserted: 42,
			StartedAt:       time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
			DurationMs:      &duration,
			ErrorMessage:    &msg,
		}})

		out := buf.String()
		assert.Contains(t, out, "2024-02-01 09:00:00")
		assert.Contains(t, out, "1m33s")
		assert.Contains(t, out, "1 symbols failed")
	})
}

func TestImportOneWindow(t *testing.T) {
	setFlags := func(t *testing.T, start, end, exchange string) {
		t.Helper()
		prevCfg, prevStart, prevEnd, prevExchange := cfg, importStart, importEnd, importExchange
		t.Cleanup(func() {
			cfg, importStart, importEnd, importExchange = prevCfg, prevStart, prevEnd, prevExchange
		})
		cfg = &config.Config{Importer: config.ImporterConfig{LookbackDays: chart.DefaultLookbackDays}}
		importStart, importEnd, importExchange = start, end, exchange
	}

	t.Run("domestic default fits one request", func(t *testing.T) {
		setFlags(t, "", "20240531", "")
		start, end, err := importOneWindow()
		require.NoError(t, err)
		assert.Equal(t, "20240115", start)
		assert.Equal(t, "20240531", end)
		assert.NoError(t, chart.ValidateDomesticWindow(start, end))
	})

	t.Run("explicit start is kept", func(t *testing.T) {
		setFlags(t, "20240401", "20240531", "")
		start, _, err := importOneWindow()
		require.NoError(t, err)
		assert.Equal(t, "20240401", start)
	})

	t.Run("overseas keeps the lookback", func(t *testing.T) {
		setFlags(t, "", "", "NASDAQ")
		start, end, err := importOneWindow()
		require.NoError(t, err)
		days, err := chart.CountWeekdays(start, end)
		require.NoError(t, err)
		assert.Greater(t, days, chart.MaxDomesticWeekdays)
	})

	t.Run("bad end date", func(t *testing.T) {
		setFlags(t, "", "2024-05-31", "")
		_, _, err := importOneWindow()
		assert.ErrorIs(t, err, chart.ErrInvalidDateFormat)
	})
}
