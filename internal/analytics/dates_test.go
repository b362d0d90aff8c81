package analytics

import (
	"testing"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampsMonthEnd(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"jan 31 to feb clamps to 28", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"jan 31 to feb in leap year clamps to 29", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"mar 31 to apr clamps to 30", date(2025, time.March, 31), 1, date(2025, time.April, 30)},
		{"aug 31 to sep clamps to 30", date(2025, time.August, 31), 1, date(2025, time.September, 30)},
		{"oct 31 to nov clamps to 30", date(2025, time.October, 31), 1, date(2025, time.November, 30)},
		{"dec 31 to jan keeps 31", date(2025, time.December, 31), 1, date(2026, time.January, 31)},
		{"mid-month is untouched", date(2025, time.January, 15), 1, date(2025, time.February, 15)},
		{"quarter from nov 30", date(2025, time.November, 30), 3, date(2026, time.February, 28)},
		{"year from leap day clamps", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
		{"year across leap day keeps 29", date(2023, time.February, 28), 12, date(2024, time.February, 28)},
		{"backwards from mar 31", date(2025, time.March, 31), -1, date(2025, time.February, 28)},
		{"backwards from mar 31 leap year", date(2024, time.March, 31), -1, date(2024, time.February, 29)},
		{"zero months", date(2025, time.July, 31), 0, date(2025, time.July, 31)},
		{"many months across year boundary", date(2025, time.October, 31), 4, date(2026, time.February, 28)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddMonths(tc.in, tc.n)
			if !got.Equal(tc.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tc.in, tc.n, got, tc.want)
			}
		})
	}
}

func TestAddMonthsPreservesTimeOfDay(t *testing.T) {
	in := time.Date(2025, time.January, 31, 13, 45, 30, 0, time.UTC)
	got := AddMonths(in, 1)
	want := time.Date(2025, time.February, 28, 13, 45, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextOccurrence(t *testing.T) {
	from := date(2025, time.January, 31)
	cases := []struct {
		freq model.Frequency
		want time.Time
	}{
		{model.FrequencyDaily, date(2025, time.February, 1)},
		{model.FrequencyWeekly, date(2025, time.February, 7)},
		{model.FrequencyBiweekly, date(2025, time.February, 14)},
		{model.FrequencyMonthly, date(2025, time.February, 28)},
		{model.FrequencyQuarterly, date(2025, time.April, 30)},
		{model.FrequencyYearly, date(2026, time.January, 31)},
	}
	for _, tc := range cases {
		t.Run(string(tc.freq), func(t *testing.T) {
			got := NextOccurrence(from, tc.freq)
			if !got.Equal(tc.want) {
				t.Errorf("NextOccurrence(%v, %s) = %v, want %v", from, tc.freq, got, tc.want)
			}
		})
	}
}
