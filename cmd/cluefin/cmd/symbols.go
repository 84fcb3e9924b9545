package cmd

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kgcrom/cluefin-sub000/internal/domain/chart"
)

// readSymbols scans one token per line and keeps those accept allows.
func readSymbols(r io.Reader, accept func(string) bool) ([]string, error) {
	var out []string
	skipped := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !accept(line) {
			skipped++
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	log.Info().Int("symbols", len(out)).Int("skipped", skipped).Msg("Read symbols from stdin")
	return out, nil
}

// collectDomestic merges positional codes and stdin, keeping six-digit
// codes only, de-duplicated and sorted.
func collectDomestic(args []string, stdin io.Reader) ([]string, error) {
	codes := slices.Clone(args)
	if stdin != nil {
		fromStdin, err := readSymbols(stdin, chart.IsDomesticCode)
		if err != nil {
			return nil, err
		}
		codes = append(codes, fromStdin...)
	}
	return sortedUnique(codes, chart.NormalizeDomesticSymbol), nil
}

// collectOverseas is collectDomestic for tickers: any non-empty token,
// upper-cased.
func collectOverseas(args []string, stdin io.Reader) ([]string, error) {
	tickers := slices.Clone(args)
	if stdin != nil {
		fromStdin, err := readSymbols(stdin, func(string) bool { return true })
		if err != nil {
			return nil, err
		}
		tickers = append(tickers, fromStdin...)
	}
	return sortedUnique(tickers, chart.NormalizeOverseasSymbol), nil
}

func sortedUnique(symbols []string, norm func(string) string) []string {
	out := chart.NormalizeSymbols(symbols, norm)
	slices.Sort(out)
	return out
}
