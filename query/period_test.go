package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodAt(t *testing.T) {
	today := time.Date(2026, time.August, 28, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		period string
		start  string
		end    string
	}{
		{"this_month", "2026-08-01", "2026-08-31"},
		{"last_month", "2026-07-01", "2026-07-31"},
		{"this_year", "2026-01-01", "2026-12-31"},
		{"last_year", "2025-01-01", "2025-12-31"},
		{"last_7_days", "2026-08-21", "2026-08-28"},
		{"last_30_days", "2026-07-29", "2026-08-28"},
		{"last_90_days", "2026-05-30", "2026-08-28"},
		{"ytd", "2026-01-01", "2026-08-28"},
	}
	for _, tc := range cases {
		t.Run(tc.period, func(t *testing.T) {
			start, end, err := parsePeriodAt(tc.period, today)
			require.NoError(t, err)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

func TestParsePeriodAt_LastMonthAcrossYear(t *testing.T) {
	start, end, err := parsePeriodAt("last_month", time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", start)
	assert.Equal(t, "2025-12-31", end)
}

func TestParsePeriod_Unknown(t *testing.T) {
	_, _, err := ParsePeriod("fortnight")
	assert.ErrorContains(t, err, "fortnight")
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange(2024, time.February) // leap year
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", start)
	assert.Equal(t, "2024-02-29", end)

	_, _, err = MonthRange(2026, time.Month(13))
	assert.Error(t, err)
}
