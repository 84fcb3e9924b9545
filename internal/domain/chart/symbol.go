package chart

import (
	"fmt"
	"strings"
)

// Exchange codes accepted from callers.
var recognizedExchanges = map[string]struct{}{
	"NYSE":   {},
	"NASDAQ": {},
	"AMS":    {},
	"HKS":    {},
	"TSE":    {},
	"HASE":   {},
	"VNSE":   {},
}

// NormalizeDomesticSymbol trims; case is preserved.
func NormalizeDomesticSymbol(symbol string) string {
	return strings.TrimSpace(symbol)
}

// NormalizeOverseasSymbol trims and upper-cases.
func NormalizeOverseasSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeExchange trims and upper-cases the exchange code and rejects
// unknown ones.
func NormalizeExchange(exchange string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(exchange))
	if _, ok := recognizedExchanges[code]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidExchange, exchange)
	}
	return code, nil
}

// BrokerExchangeCode maps a caller exchange code to the broker's EXCD.
// Only NYSE has a distinct code; everything else is routed as NAS.
func BrokerExchangeCode(exchange string) string {
	if exchange == "NYSE" {
		return "NYS"
	}
	return "NAS"
}

// NormalizeSymbols applies norm, drops blanks and keeps first occurrences.
func NormalizeSymbols(symbols []string, norm func(string) string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		s = norm(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// IsDomesticCode reports whether s is a six-digit KRX code.
func IsDomesticCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
