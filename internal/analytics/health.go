package analytics

// Health score bands, ordered best to worst.
const (
	BandExcellent        = "Excellent"
	BandVeryGood         = "Very Good"
	BandGood             = "Good"
	BandFair             = "Fair"
	BandNeedsImprovement = "Needs Improvement"
	BandCritical         = "Critical"
	// BandNoIncome covers a month with spending but no income; BandNoData
	// covers no activity at all. Both score 0 but mean different things to
	// the user.
	BandNoIncome = "No Income"
	BandNoData   = "No Data"
)

// HealthScore is the rule-based financial health result for one month.
type HealthScore struct {
	Score int    `json:"score"`
	Band  string `json:"band"`
	// Breakdown exposes the inputs behind the score: savings_rate,
	// expense_to_income, income, expense.
	Breakdown map[string]float64 `json:"breakdown"`
}

// ScoreFinancialHealth maps one month's income and expense sums to a 0-100
// score via a fixed savings-rate ladder. The thresholds are an ordered
// policy table; changing them changes every user's score, so they live in
// one place.
func ScoreFinancialHealth(income, expense float64) HealthScore {
	breakdown := map[string]float64{
		"income":  income,
		"expense": expense,
	}

	if income == 0 {
		breakdown["savings_rate"] = 0
		breakdown["expense_to_income"] = 0
		band := BandNoIncome
		if expense == 0 {
			band = BandNoData
		}
		return HealthScore{Score: 0, Band: band, Breakdown: breakdown}
	}

	savingsRate := (income - expense) / income * 100
	breakdown["savings_rate"] = savingsRate
	breakdown["expense_to_income"] = expense / income

	var score int
	var band string
	switch {
	case savingsRate >= 35:
		score, band = 95, BandExcellent
	case savingsRate >= 25:
		score, band = 85, BandVeryGood
	case savingsRate >= 15:
		score, band = 70, BandGood
	case savingsRate >= 5:
		score, band = 50, BandFair
	case savingsRate >= 0:
		score, band = 30, BandNeedsImprovement
	default:
		score, band = 10, BandCritical
	}

	return HealthScore{Score: score, Band: band, Breakdown: breakdown}
}
