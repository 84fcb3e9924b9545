package chart

import "time"

// tradingDaysPerCalendarDay approximates trading sessions per calendar day
// (about 252 sessions over 365 days, less holidays).
const tradingDaysPerCalendarDay = 0.72

// ExpectedTradingDays estimates the daily bars a window should hold. The
// span is end minus start in days, so a same-day window still expects one.
func ExpectedTradingDays(start, end time.Time) int {
	days := int(end.Sub(start).Hours() / 24)
	return max(1, int(float64(days)*tradingDaysPerCalendarDay))
}

// WindowCovered reports whether count stored bars cover [start, end],
// allowing a 10% shortfall (at least one bar) for holidays and halts. A
// window with no stored bars is never covered.
func WindowCovered(count int, start, end time.Time) bool {
	if count <= 0 {
		return false
	}
	expected := ExpectedTradingDays(start, end)
	tolerance := max(1, int(float64(expected)*0.1))
	return count >= expected-tolerance
}
