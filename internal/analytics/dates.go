package analytics

import (
	"time"

	"github.com/finsight-app/backend/internal/model"
)

// AddMonths advances t by n calendar months, clamping the day-of-month to the
// length of the target month: Jan 31 + 1 month = Feb 28 (or Feb 29 in a leap
// year). This deliberately differs from time.AddDate, which rolls overflow
// into the following month (Jan 31 + 1 month = Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextOccurrence advances a date by one period of the given frequency.
// Month-based frequencies use calendar-aware arithmetic (AddMonths).
func NextOccurrence(from time.Time, freq model.Frequency) time.Time {
	switch freq {
	case model.FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case model.FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case model.FrequencyBiweekly:
		return from.AddDate(0, 0, 14)
	case model.FrequencyMonthly:
		return AddMonths(from, 1)
	case model.FrequencyQuarterly:
		return AddMonths(from, 3)
	case model.FrequencyYearly:
		return AddMonths(from, 12)
	default:
		return AddMonths(from, 1)
	}
}

// monthKey truncates t to the first instant of its calendar month in UTC,
// giving a stable bucket key for monthly aggregation.
func monthKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
