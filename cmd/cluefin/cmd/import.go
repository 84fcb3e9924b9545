package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/service/chartimport"
)

// import 플래그 (하위 커맨드 공유)
var (
	importFromStdin bool
	importStart     string
	importEnd       string
	importSkip      bool
	importChunkSize int
	importWorkers   int
	importRateLimit float64
	importProgress  bool
	importExchange  string
)

// importCmd cluefin import [codes...]
var importCmd = &cobra.Command{
	Use:   "import [codes...]",
	Short: "Import domestic daily charts",
	Long: `Import domestic (KRX) daily charts for six-digit stock codes.

Codes come from the arguments and, with --from-stdin, one per line on stdin.
Windows longer than 100 weekdays are split automatically.

Examples:
    cluefin import 005930 000660 --start 20240101 --end 20240531
    cat codes.txt | cluefin import --from-stdin --workers 8`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		codes, err := collectDomestic(args, stdinIf(importFromStdin))
		if err != nil {
			return err
		}
		return runImport(cmd, chart.MarketDomestic, "", codes)
	},
}

// importOverseasCmd cluefin import overseas --exchange NASDAQ [tickers...]
var importOverseasCmd = &cobra.Command{
	Use:   "overseas [tickers...]",
	Short: "Import overseas daily charts",
	Long: `Import overseas daily charts for tickers on one exchange
(NYSE, NASDAQ, AMS, HKS, TSE, HASE, VNSE). Only NYSE routes to its own
broker code; the rest are queried as NAS.

Examples:
    cluefin import overseas --exchange NASDAQ AAPL MSFT --start 20240101`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tickers, err := collectOverseas(args, stdinIf(importFromStdin))
		if err != nil {
			return err
		}
		return runImport(cmd, chart.MarketOverseas, importExchange, tickers)
	},
}

// importOneCmd cluefin import one [--exchange X] SYMBOL
var importOneCmd = &cobra.Command{
	Use:   "one SYMBOL",
	Short: "Import a single symbol without the worker pool",
	Long: `Import one symbol sequentially. With --exchange the symbol is an
overseas ticker; otherwise it is a domestic code.

Without --start a domestic import covers the last 100 weekdays up to --end,
the most one request accepts; overseas imports use IMPORT_LOOKBACK_DAYS.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImportOne(cmd, args[0])
	},
}

func init() {
	flags := importCmd.PersistentFlags()
	flags.BoolVar(&importFromStdin, "from-stdin", false, "read symbols from stdin, one per line")
	flags.StringVar(&importStart, "start", "", "start date YYYYMMDD (default: IMPORT_LOOKBACK_DAYS ago)")
	flags.StringVar(&importEnd, "end", "", "end date YYYYMMDD (default: today)")
	flags.BoolVar(&importSkip, "skip-existing", true, "skip symbols already stored for the window")
	flags.IntVar(&importChunkSize, "chunk-size", 0, "symbols per chunk (default: IMPORT_CHUNK_SIZE)")
	flags.IntVar(&importWorkers, "workers", 0, "concurrent workers, capped at 10 (default: IMPORT_MAX_WORKERS)")
	flags.Float64Var(&importRateLimit, "rate-limit", 0, "requests per second (default: IMPORT_RATE_LIMIT)")
	flags.BoolVar(&importProgress, "progress", isatty.IsTerminal(os.Stderr.Fd()), "show progress on stderr")

	importOverseasCmd.Flags().StringVar(&importExchange, "exchange", "", "exchange code (required)")
	_ = importOverseasCmd.MarkFlagRequired("exchange")

	importOneCmd.Flags().StringVar(&importExchange, "exchange", "", "exchange code for overseas tickers")

	importCmd.AddCommand(importOverseasCmd)
	importCmd.AddCommand(importOneCmd)
}

func stdinIf(enabled bool) io.Reader {
	if enabled {
		return os.Stdin
	}
	return nil
}

// importWindow resolves --start/--end against the configured lookback.
func importWindow() (string, string) {
	start, end := chart.DefaultWindow(cfg.Importer.LookbackDays)
	if importStart != "" {
		start = importStart
	}
	if importEnd != "" {
		end = importEnd
	}
	return start, end
}

// importOneWindow is importWindow, except a domestic symbol without --start
// gets the trailing 100 weekdays, since ImportOne does not split windows.
func importOneWindow() (string, string, error) {
	start, end := importWindow()
	if importExchange != "" || importStart != "" {
		return start, end, nil
	}
	start, err := chart.TrailingWindow(end, chart.MaxDomesticWeekdays)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

func runImport(cmd *cobra.Command, market chart.Market, exchange string, symbols []string) error {
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given: pass them as arguments or use --from-stdin")
	}

	start, end := importWindow()
	chunkSize := importChunkSize
	if chunkSize <= 0 {
		chunkSize = cfg.Importer.ChunkSize
	}

	req := chartimport.Request{
		Market:       market,
		Exchange:     exchange,
		Symbols:      symbols,
		Start:        start,
		End:          end,
		SkipExisting: importSkip,
		ChunkSize:    chunkSize,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	st, err := buildStack(ctx, importerFlags{workers: importWorkers, rateLimit: importRateLimit})
	if err != nil {
		return err
	}
	defer st.close()

	out := cmd.OutOrStdout()
	printPlan(out, req)

	var progress *progressPrinter
	if importProgress {
		progress = newProgressPrinter(cmd.ErrOrStderr(), isatty.IsTerminal(os.Stderr.Fd()))
		req.Progress = progress.update
	}

	results, runErr := st.service.Run(ctx, req)
	if progress != nil {
		progress.done()
	}
	printSummary(out, results)

	if runErr != nil {
		if ctx.Err() != nil {
			log.Warn().Msg("Import interrupted; rows fetched before the interrupt were stored")
		}
		return runErr
	}
	return nil
}

func runImportOne(cmd *cobra.Command, symbol string) error {
	start, end, err := importOneWindow()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	st, err := buildStack(ctx, importerFlags{workers: 1, rateLimit: importRateLimit})
	if err != nil {
		return err
	}
	defer st.close()

	var n int
	if importExchange != "" {
		n, err = st.overseas.ImportOne(ctx, importExchange, symbol, start, end, importSkip)
	} else {
		n, err = st.domestic.ImportOne(ctx, symbol, start, end, importSkip)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows (%s ~ %s)\n", symbol, n, start, end)
	return nil
}
