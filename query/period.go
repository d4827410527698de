package query

import (
	"fmt"
	"time"
)

// ParsePeriod resolves a period shorthand (this_month, last_month, this_year,
// last_year, last_7_days, last_30_days, last_90_days, ytd) into an inclusive
// [start, end] date range, both "YYYY-MM-DD".
func ParsePeriod(period string) (start, end string, err error) {
	return parsePeriodAt(period, time.Now())
}

func parsePeriodAt(period string, today time.Time) (start, end string, err error) {
	switch period {
	case "this_month":
		return MonthRange(today.Year(), today.Month())
	case "last_month":
		prev := today.AddDate(0, 0, -today.Day()) // last day of the previous month
		return MonthRange(prev.Year(), prev.Month())
	case "this_year":
		return fmt.Sprintf("%04d-01-01", today.Year()), fmt.Sprintf("%04d-12-31", today.Year()), nil
	case "last_year":
		y := today.Year() - 1
		return fmt.Sprintf("%04d-01-01", y), fmt.Sprintf("%04d-12-31", y), nil
	case "last_7_days":
		return lastDays(today, 7)
	case "last_30_days":
		return lastDays(today, 30)
	case "last_90_days":
		return lastDays(today, 90)
	case "ytd":
		return fmt.Sprintf("%04d-01-01", today.Year()), today.Format("2006-01-02"), nil
	default:
		return "", "", fmt.Errorf("unknown period %q", period)
	}
}

func lastDays(today time.Time, n int) (string, string, error) {
	return today.AddDate(0, 0, -n).Format("2006-01-02"), today.Format("2006-01-02"), nil
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month) (start, end string, err error) {
	if month < time.January || month > time.December {
		return "", "", fmt.Errorf("month out of range: %d", month)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02"), nil
}
