package chart

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the broker's YYYYMMDD date format.
	DateLayout = "20060102"

	// MaxDomesticWeekdays bounds one domestic period-quote request.
	MaxDomesticWeekdays = 100

	// DefaultLookbackDays is roughly three years.
	DefaultLookbackDays = 1095
)

// ParseDate parses a YYYYMMDD string as a calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// ValidateWindow checks both dates and their order.
func ValidateWindow(start, end string) error {
	s, err := ParseDate(start)
	if err != nil {
		return err
	}
	e, err := ParseDate(end)
	if err != nil {
		return err
	}
	if s.After(e) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, start, end)
	}
	return nil
}

// ValidateDomesticWindow additionally enforces the weekday bound of the
// domestic period-quote endpoint. Holidays count as weekdays.
func ValidateDomesticWindow(start, end string) error {
	if err := ValidateWindow(start, end); err != nil {
		return err
	}
	n, err := CountWeekdays(start, end)
	if err != nil {
		return err
	}
	if n > MaxDomesticWeekdays {
		return fmt.Errorf("%w: %d weekdays found (%s-%s)", ErrDateRangeTooWide, n, start, end)
	}
	return nil
}

// CountWeekdays counts Monday through Friday in the closed interval.
func CountWeekdays(start, end string) (int, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return 0, err
	}
	return countWeekdays(s, e), nil
}

func countWeekdays(s, e time.Time) int {
	if s.After(e) {
		return 0
	}
	days := int(e.Sub(s).Hours()/24) + 1
	n := (days / 7) * 5
	// Remainder days after whole weeks.
	wd := s.Weekday()
	for i := 0; i < days%7; i++ {
		if d := (wd + time.Weekday(i)) % 7; d != time.Saturday && d != time.Sunday {
			n++
		}
	}
	return n
}

// DefaultWindow returns (today - daysBack, today).
func DefaultWindow(daysBack int) (start, end string) {
	return DefaultWindowAt(time.Now(), daysBack)
}

func DefaultWindowAt(now time.Time, daysBack int) (start, end string) {
	return now.AddDate(0, 0, -daysBack).Format(DateLayout), now.Format(DateLayout)
}

// Window is a closed YYYYMMDD interval.
type Window struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// SplitWindow cuts [start, end] into consecutive windows holding at most
// maxWeekdays weekdays each. Windows never start on a weekend.
func SplitWindow(start, end string, maxWeekdays int) ([]Window, error) {
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}
	if maxWeekdays < 1 {
		maxWeekdays = MaxDomesticWeekdays
	}
	s, _ := ParseDate(start)
	e, _ := ParseDate(end)

	var out []Window
	cur := s
	for !cur.After(e) {
		for isWeekend(cur) && !cur.After(e) {
			cur = cur.AddDate(0, 0, 1)
		}
		if cur.After(e) {
			break
		}

		last, count := cur, 0
		for d := cur; !d.After(e); d = d.AddDate(0, 0, 1) {
			if !isWeekend(d) {
				if count == maxWeekdays {
					break
				}
				count++
			}
			last = d
		}
		out = append(out, Window{Start: cur.Format(DateLayout), End: last.Format(DateLayout)})
		cur = last.AddDate(0, 0, 1)
	}

	if len(out) == 0 {
		// Weekend-only range: keep it as a single window.
		out = append(out, Window{Start: start, End: end})
	}
	return out, nil
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// TrailingWindow returns the start date that puts exactly maxWeekdays
// weekdays in [start, end], or end itself when maxWeekdays < 1.
func TrailingWindow(end string, maxWeekdays int) (start string, err error) {
	e, err := ParseDate(end)
	if err != nil {
		return "", err
	}
	s, count := e, 0
	for d := e; count < maxWeekdays; d = d.AddDate(0, 0, -1) {
		if !isWeekend(d) {
			count++
			s = d
		}
	}
	return s.Format(DateLayout), nil
}
