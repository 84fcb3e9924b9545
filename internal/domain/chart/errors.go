package chart

import "errors"

// Domain errors
var (
	// Validation errors
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYYMMDD")
	ErrInvalidDateRange  = errors.New("start date is after end date")
	ErrDateRangeTooWide  = errors.New("date range exceeds the 100 weekday limit")
	ErrInvalidExchange   = errors.New("invalid exchange code")
	ErrInvalidSymbol     = errors.New("invalid symbol")

	// Worker errors
	ErrRateLimitTimeout = errors.New("rate limit timeout")
	ErrWorkerTimeout    = errors.New("worker timed out")
	ErrWorkerPanic      = errors.New("worker panicked")

	// Job errors
	ErrJobNotFound       = errors.New("import job not found")
	ErrJobAlreadyRunning = errors.New("import job already running")
)

// IsValidationError reports whether err was caused by bad caller input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDateFormat) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrDateRangeTooWide) ||
		errors.Is(err, ErrInvalidExchange) ||
		errors.Is(err, ErrInvalidSymbol)
}
