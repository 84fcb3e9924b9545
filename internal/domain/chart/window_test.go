package chart

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"20240101", false},
		{"20240229", false},
		{"20230229", true},
		{"2024-01-01", true},
		{"202401", true},
		{"", true},
		{"abcdefgh", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateFormat)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCountWeekdays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"single weekday", "20240102", "20240102", 1},
		{"weekend only", "20240106", "20240107", 0},
		{"friday to monday", "20240105", "20240108", 2},
		{"one full week", "20240101", "20240107", 5},
		{"twenty weeks", "20240101", "20240517", 100},
		{"reversed", "20240110", "20240101", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := CountWeekdays(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestValidateDomesticWindow(t *testing.T) {
	t.Run("100 weekdays accepted", func(t *testing.T) {
		assert.NoError(t, ValidateDomesticWindow("20240101", "20240517"))
	})

	t.Run("101 weekdays rejected", func(t *testing.T) {
		err := ValidateDomesticWindow("20240101", "20240520")
		assert.ErrorIs(t, err, ErrDateRangeTooWide)
		assert.Contains(t, err.Error(), "101 weekdays")
	})

	t.Run("multi year window reports count", func(t *testing.T) {
		err := ValidateDomesticWindow("20200101", "20240101")
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Contains(t, err.Error(), "1044 weekdays")
	})

	t.Run("bad format", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDomesticWindow("2024-01-01", "20240105"), ErrInvalidDateFormat)
	})

	t.Run("start after end", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDomesticWindow("20240105", "20240101"), ErrInvalidDateRange)
	})
}

func TestDefaultWindowAt(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	start, end := DefaultWindowAt(now, 30)
	assert.Equal(t, "20240531", start)
	assert.Equal(t, "20240630", end)

	start, _ = DefaultWindowAt(now, DefaultLookbackDays)
	assert.Equal(t, "20210701", start)
}

func TestSplitWindow(t *testing.T) {
	t.Run("fits in one window", func(t *testing.T) {
		ws, err := SplitWindow("20240101", "20240517", MaxDomesticWeekdays)
		require.NoError(t, err)
		assert.Equal(t, []Window{{Start: "20240101", End: "20240517"}}, ws)
	})

	t.Run("splits at the weekday bound", func(t *testing.T) {
		ws, err := SplitWindow("20240101", "20240531", MaxDomesticWeekdays)
		require.NoError(t, err)
		assert.Equal(t, []Window{
			{Start: "20240101", End: "20240519"},
			{Start: "20240520", End: "20240531"},
		}, ws)
	})

	t.Run("every window is valid", func(t *testing.T) {
		ws, err := SplitWindow("20210701", "20240630", MaxDomesticWeekdays)
		require.NoError(t, err)
		assert.Greater(t, len(ws), 7)
		for _, w := range ws {
			assert.NoError(t, ValidateDomesticWindow(w.Start, w.End), w)
		}
		assert.Equal(t, "20210701", ws[0].Start)
		assert.Equal(t, "20240630", ws[len(ws)-1].End)
	})

	t.Run("weekend only", func(t *testing.T) {
		ws, err := SplitWindow("20240106", "20240107", MaxDomesticWeekdays)
		require.NoError(t, err)
		assert.Len(t, ws, 1)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := SplitWindow("20240107", "20240106", MaxDomesticWeekdays)
		assert.True(t, errors.Is(err, ErrInvalidDateRange))
	})
}

func TestTrailingWindow(t *testing.T) {
	t.Run("fits the domestic bound", func(t *testing.T) {
		start, err := TrailingWindow("20240531", MaxDomesticWeekdays)
		require.NoError(t, err)
		assert.Equal(t, "20240115", start)
		assert.NoError(t, ValidateDomesticWindow(start, "20240531"))

		n, err := CountWeekdays(start, "20240531")
		require.NoError(t, err)
		assert.Equal(t, MaxDomesticWeekdays, n)
	})

	t.Run("weekend end date", func(t *testing.T) {
		start, err := TrailingWindow("20240106", 1)
		require.NoError(t, err)
		assert.Equal(t, "20240105", start)
	})

	t.Run("invalid end", func(t *testing.T) {
		_, err := TrailingWindow("2024-05-31", 10)
		assert.ErrorIs(t, err, ErrInvalidDateFormat)
	})
}
