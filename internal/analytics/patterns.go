package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

// UncategorizedLabel is the sentinel category applied to transactions with no
// category. Resolving it here, at ingestion, means grouping logic downstream
// never branches on a missing value.
const UncategorizedLabel = "Uncategorized"

// trendMonths is the fixed length of the per-category monthly trend series.
const trendMonths = 6

// confidenceSamples is the observation count at which aggregate confidence
// saturates at 1.0.
const confidenceSamples = 10

// CategoryAggregate summarizes spending behavior in one category over the
// analysis window.
type CategoryAggregate struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Total    float64 `json:"total"`
	// MonthlyTrend holds calendar-month expense sums for the six months
	// ending at the analysis date, most recent last, zero-filled for months
	// with no activity.
	MonthlyTrend []float64 `json:"monthly_trend"`
	// TrendRatio is the normalized OLS slope over MonthlyTrend.
	TrendRatio float64 `json:"trend_ratio"`
	// Confidence grows with sample count and saturates at 1.0.
	Confidence float64 `json:"confidence"`
}

// categoryOrDefault maps an empty category to the sentinel label.
func categoryOrDefault(category string) string {
	if category == "" {
		return UncategorizedLabel
	}
	return category
}

// AnalyzeSpendingPatterns aggregates expense transactions per category:
// mean, population standard deviation, a six-month bucketed trend, and a
// sample-count confidence. Categories with fewer than two observations are
// dropped as insufficient signal. The result is sorted by descending mean
// (category name as tie-break), so identical inputs in any order produce
// identical output.
func AnalyzeSpendingPatterns(txns []*model.Transaction, now time.Time) []CategoryAggregate {
	type group struct {
		amounts []float64
		monthly map[time.Time]float64
	}
	groups := make(map[string]*group)

	for _, t := range txns {
		if t.Kind != model.KindExpense {
			continue
		}
		label := categoryOrDefault(t.Category)
		g, ok := groups[label]
		if !ok {
			g = &group{monthly: make(map[time.Time]float64)}
			groups[label] = g
		}
		g.amounts = append(g.amounts, t.Amount)
		g.monthly[monthKey(t.Date)] += t.Amount
	}

	// The six bucket keys, oldest first, ending at the month containing now.
	bucketKeys := make([]time.Time, trendMonths)
	for i := 0; i < trendMonths; i++ {
		bucketKeys[i] = monthKey(AddMonths(now, i-trendMonths+1))
	}

	aggregates := []CategoryAggregate{}
	for label, g := range groups {
		if len(g.amounts) < 2 {
			continue
		}
		trend := make([]float64, trendMonths)
		for i, key := range bucketKeys {
			trend[i] = g.monthly[key]
		}
		var total float64
		for _, a := range g.amounts {
			total += a
		}
		aggregates = append(aggregates, CategoryAggregate{
			Category:     label,
			Count:        len(g.amounts),
			Mean:         Mean(g.amounts),
			StdDev:       StdDev(g.amounts),
			Total:        total,
			MonthlyTrend: trend,
			TrendRatio:   LinearTrendRatio(trend),
			Confidence:   math.Min(float64(len(g.amounts))/confidenceSamples, 1),
		})
	}

	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].Mean != aggregates[j].Mean {
			return aggregates[i].Mean > aggregates[j].Mean
		}
		return aggregates[i].Category < aggregates[j].Category
	})
	return aggregates
}
