package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
	"github.com/kgcrom/cluefin-sub000/internal/service/chartimport"
)

// printPlan prints what an import run is about to do.
func printPlan(w io.Writer, req chartimport.Request) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Market\t%s\n", req.Market)
	if req.Exchange != "" {
		fmt.Fprintf(tw, "Exchange\t%s\n", strings.ToUpper(strings.TrimSpace(req.Exchange)))
	}
	fmt.Fprintf(tw, "Symbols\t%d\n", len(req.Symbols))
	fmt.Fprintf(tw, "Window\t%s ~ %s\n", req.Start, req.End)
	fmt.Fprintf(tw, "Skip existing\t%t\n", req.SkipExisting)
	fmt.Fprintf(tw, "Chunk size\t%d\n", req.ChunkSize)
	tw.Flush()
	fmt.Fprintln(w)
}

// printSummary prints the outcome table and the failed symbols, if any.
func printSummary(w io.Writer, results chart.ImportResults) {
	s := results.Summary()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Succeeded\tEmpty/Skipped\tFailed\tRows\t")
	fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t\n", s.Succeeded, s.Empty, s.Failed, s.Rows)
	tw.Flush()

	if failed := results.Failed(); len(failed) > 0 {
		slices.Sort(failed)
		fmt.Fprintf(w, "\nFailed (%d): %s\n", len(failed), strings.Join(failed, " "))
	}
}

// progressPrinter renders per-chunk progress. On a terminal it redraws one
// line; otherwise it prints a line per update.
type progressPrinter struct {
	w       io.Writer
	tty     bool
	started time.Time
	printed bool
}

func newProgressPrinter(w io.Writer, tty bool) *progressPrinter {
	return &progressPrinter{w: w, tty: tty, started: time.Now()}
}

func (p *progressPrinter) update(processed, total int, lastSymbol string) {
	pct := 0
	if total > 0 {
		pct = processed * 100 / total
	}
	line := fmt.Sprintf("[%d/%d] %3d%%  %s  %s", processed, total, pct, lastSymbol, time.Since(p.started).Round(time.Second))
	if p.tty {
		fmt.Fprintf(p.w, "\r\033[K%s", line)
	} else {
		fmt.Fprintln(p.w, line)
	}
	p.printed = true
}

// done ends a redrawn line so later output starts on a fresh one.
func (p *progressPrinter) done() {
	if p.tty && p.printed {
		fmt.Fprintln(p.w)
	}
}
