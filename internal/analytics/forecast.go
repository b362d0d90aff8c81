package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

// trendDamping halves the influence of the short-term trend on projections.
// Trailing three-month trends are noisy; without damping a single strong
// month swings the whole forecast.
const trendDamping = 0.5

// trendWindow is how many trailing monthly sums feed the trend ratio.
const trendWindow = 3

// forecastConfidence is the fixed confidence attached to every forecast
// point. The model projects trailing averages, so there is no computed
// interval to report.
const forecastConfidence = 0.75

// DefaultForecastHorizon is the number of months projected when the caller
// does not specify a horizon.
const DefaultForecastHorizon = 3

// ForecastPoint is one projected future month.
type ForecastPoint struct {
	// Month labels the target calendar month, e.g. "Sep 2026".
	Month             string  `json:"month"`
	ProjectedIncome   float64 `json:"projected_income"`
	ProjectedExpense  float64 `json:"projected_expense"`
	ProjectedSavings  float64 `json:"projected_savings"`
	Confidence        float64 `json:"confidence"`
}

// ForecastCashFlow projects income and expense horizon months past now from
// the monthly history in txns. Each projection is the all-month average
// scaled by the damped trailing trend, floored at zero. With no bucketed
// months the forecast is empty, never an error.
func ForecastCashFlow(txns []*model.Transaction, horizon int, now time.Time) []ForecastPoint {
	if horizon <= 0 {
		horizon = DefaultForecastHorizon
	}

	type monthSums struct {
		income  float64
		expense float64
	}
	buckets := make(map[time.Time]*monthSums)
	for _, t := range txns {
		key := monthKey(t.Date)
		b, ok := buckets[key]
		if !ok {
			b = &monthSums{}
			buckets[key] = b
		}
		switch t.Kind {
		case model.KindIncome:
			b.income += t.Amount
		case model.KindExpense:
			b.expense += t.Amount
		}
	}
	if len(buckets) == 0 {
		return []ForecastPoint{}
	}

	months := make([]time.Time, 0, len(buckets))
	for key := range buckets {
		months = append(months, key)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	incomeSeries := make([]float64, len(months))
	expenseSeries := make([]float64, len(months))
	for i, key := range months {
		incomeSeries[i] = buckets[key].income
		expenseSeries[i] = buckets[key].expense
	}

	avgIncome := Mean(incomeSeries)
	avgExpense := Mean(expenseSeries)
	incomeTrend := LinearTrendRatio(tail(incomeSeries, trendWindow))
	expenseTrend := LinearTrendRatio(tail(expenseSeries, trendWindow))

	projectedIncome := math.Max(0, avgIncome*(1+incomeTrend*trendDamping))
	projectedExpense := math.Max(0, avgExpense*(1+expenseTrend*trendDamping))

	points := make([]ForecastPoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		target := AddMonths(monthKey(now), i)
		points = append(points, ForecastPoint{
			Month:            target.Format("Jan 2006"),
			ProjectedIncome:  projectedIncome,
			ProjectedExpense: projectedExpense,
			ProjectedSavings: projectedIncome - projectedExpense,
			Confidence:       forecastConfidence,
		})
	}
	return points
}

// tail returns the last n elements of xs, or all of xs if shorter.
func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
