package analytics

import "fmt"

// Advice is one canned, rule-based recommendation derived from the other
// analytics results. There is no model behind these; each is a fixed message
// attached to a threshold.
type Advice struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	// Priority orders advice for display; lower is more important.
	Priority int `json:"priority"`
}

// BuildAdvice turns analytics results into a short list of canned
// recommendations, ordered by priority. Empty inputs yield general guidance
// rather than an error.
func BuildAdvice(health HealthScore, aggregates []CategoryAggregate, forecast []ForecastPoint) []Advice {
	advice := []Advice{}

	switch health.Band {
	case BandCritical:
		advice = append(advice, Advice{
			Title:    "Spending exceeds income",
			Body:     "You spent more than you earned this month. Review your largest categories below and look for one recurring cost to cut.",
			Priority: 1,
		})
	case BandNeedsImprovement, BandFair:
		advice = append(advice, Advice{
			Title:    "Savings rate is low",
			Body:     fmt.Sprintf("Your savings rate is %.1f%%. Aiming for 15%% or more gives you a meaningful buffer.", health.Breakdown["savings_rate"]),
			Priority: 2,
		})
	case BandExcellent, BandVeryGood:
		advice = append(advice, Advice{
			Title:    "Strong savings rate",
			Body:     fmt.Sprintf("You saved %.1f%% of your income this month. Consider moving the surplus somewhere it earns a return.", health.Breakdown["savings_rate"]),
			Priority: 5,
		})
	case BandNoData:
		advice = append(advice, Advice{
			Title:    "No activity yet",
			Body:     "Add your transactions to start seeing spending insights and forecasts.",
			Priority: 1,
		})
	}

	// Flag the fastest-growing category with enough history to trust.
	var growing *CategoryAggregate
	for i := range aggregates {
		a := &aggregates[i]
		if a.Confidence < 0.5 || a.TrendRatio <= 0.15 {
			continue
		}
		if growing == nil || a.TrendRatio > growing.TrendRatio {
			growing = a
		}
	}
	if growing != nil {
		advice = append(advice, Advice{
			Title:    fmt.Sprintf("%s spending is trending up", growing.Category),
			Body:     fmt.Sprintf("Your %s spending has grown steadily over the last six months (average %.2f per transaction).", growing.Category, growing.Mean),
			Priority: 3,
		})
	}

	// Warn on projected negative savings.
	for _, p := range forecast {
		if p.ProjectedSavings < 0 {
			advice = append(advice, Advice{
				Title:    "Forecast shows a shortfall",
				Body:     fmt.Sprintf("At the current pace you are projected to spend %.2f more than you earn in %s.", -p.ProjectedSavings, p.Month),
				Priority: 2,
			})
			break
		}
	}

	sortAdvice(advice)
	return advice
}

func sortAdvice(advice []Advice) {
	for i := 1; i < len(advice); i++ {
		for j := i; j > 0 && advice[j].Priority < advice[j-1].Priority; j-- {
			advice[j], advice[j-1] = advice[j-1], advice[j]
		}
	}
}
