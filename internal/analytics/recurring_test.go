package analytics

import (
	"testing"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

func merchantExpense(id, merchant string, amount float64, day time.Time) *model.Transaction {
	tx := expense(id, "Subscriptions", amount, day, day)
	tx.Merchant = merchant
	return tx
}

func TestDetectRecurringCandidates(t *testing.T) {
	t.Run("monthly subscription on the 1st", func(t *testing.T) {
		txns := []*model.Transaction{
			merchantExpense("n1", "Netflix", 4.99, date(2025, time.January, 1)),
			merchantExpense("n2", "Netflix", 4.99, date(2025, time.February, 1)),
			merchantExpense("n3", "Netflix", 4.99, date(2025, time.March, 1)),
			merchantExpense("n4", "Netflix", 4.99, date(2025, time.April, 1)),
		}

		candidates := DetectRecurringCandidates(txns)
		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		c := candidates[0]
		if c.Merchant != "Netflix" {
			t.Errorf("expected Netflix, got %s", c.Merchant)
		}
		if c.Frequency != model.FrequencyMonthly {
			t.Errorf("expected monthly, got %s", c.Frequency)
		}
		if c.Occurrences != 4 {
			t.Errorf("expected 4 occurrences, got %d", c.Occurrences)
		}
		// One calendar month after the last occurrence, not last + 30 days.
		if want := date(2025, time.May, 1); !c.NextOccurrence.Equal(want) {
			t.Errorf("expected next occurrence %v, got %v", want, c.NextOccurrence)
		}
	})

	t.Run("month-end cadence clamps instead of drifting", func(t *testing.T) {
		txns := []*model.Transaction{
			merchantExpense("r1", "Rent Co", 1800, date(2025, time.January, 31)),
			merchantExpense("r2", "Rent Co", 1800, date(2025, time.February, 28)),
			merchantExpense("r3", "Rent Co", 1800, date(2025, time.March, 31)),
		}

		candidates := DetectRecurringCandidates(txns)
		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		c := candidates[0]
		if c.Frequency != model.FrequencyMonthly {
			t.Errorf("expected monthly, got %s", c.Frequency)
		}
		if want := date(2025, time.April, 30); !c.NextOccurrence.Equal(want) {
			t.Errorf("expected next occurrence %v, got %v", want, c.NextOccurrence)
		}
	})

	t.Run("weekly cadence", func(t *testing.T) {
		start := date(2025, time.May, 2)
		txns := []*model.Transaction{
			merchantExpense("g1", "Gym", 25, start),
			merchantExpense("g2", "Gym", 25, start.AddDate(0, 0, 7)),
			merchantExpense("g3", "Gym", 25, start.AddDate(0, 0, 14)),
		}
		candidates := DetectRecurringCandidates(txns)
		if len(candidates) != 1 || candidates[0].Frequency != model.FrequencyWeekly {
			t.Fatalf("expected one weekly candidate, got %+v", candidates)
		}
		if want := start.AddDate(0, 0, 21); !candidates[0].NextOccurrence.Equal(want) {
			t.Errorf("expected next %v, got %v", want, candidates[0].NextOccurrence)
		}
	})

	t.Run("single occurrence is not a candidate", func(t *testing.T) {
		txns := []*model.Transaction{
			merchantExpense("o1", "One-off Shop", 75, date(2025, time.March, 3)),
		}
		if candidates := DetectRecurringCandidates(txns); len(candidates) != 0 {
			t.Fatalf("expected no candidates, got %+v", candidates)
		}
	})

	t.Run("same merchant with different amounts stays separate", func(t *testing.T) {
		txns := []*model.Transaction{
			merchantExpense("a1", "Spotify", 9.99, date(2025, time.January, 5)),
			merchantExpense("a2", "Spotify", 14.99, date(2025, time.February, 5)),
		}
		if candidates := DetectRecurringCandidates(txns); len(candidates) != 0 {
			t.Fatalf("expected no candidates across different amounts, got %+v", candidates)
		}
	})

	t.Run("income is ignored", func(t *testing.T) {
		a := merchantExpense("s1", "Employer", 5000, date(2025, time.January, 15))
		b := merchantExpense("s2", "Employer", 5000, date(2025, time.February, 15))
		a.Kind = model.KindIncome
		b.Kind = model.KindIncome
		if candidates := DetectRecurringCandidates([]*model.Transaction{a, b}); len(candidates) != 0 {
			t.Fatalf("expected no candidates from income, got %+v", candidates)
		}
	})
}

func TestClassifyFrequency(t *testing.T) {
	cases := []struct {
		gap  float64
		want model.Frequency
	}{
		{1, model.FrequencyDaily},
		{1.9, model.FrequencyDaily},
		{2, model.FrequencyWeekly},
		{7, model.FrequencyWeekly},
		{9.9, model.FrequencyWeekly},
		{10, model.FrequencyBiweekly},
		{14, model.FrequencyBiweekly},
		{20, model.FrequencyMonthly},
		{30, model.FrequencyMonthly},
		{59.9, model.FrequencyMonthly},
		{60, model.FrequencyQuarterly},
		{91, model.FrequencyQuarterly},
		{120, model.FrequencyYearly},
		{365, model.FrequencyYearly},
	}
	for _, tc := range cases {
		if got := classifyFrequency(tc.gap); got != tc.want {
			t.Errorf("classifyFrequency(%.1f) = %s, want %s", tc.gap, got, tc.want)
		}
	}
}

func TestAdvanceDueRules(t *testing.T) {
	asOf := date(2025, time.June, 15)

	rule := func(id string, next time.Time) *model.RecurringRule {
		return &model.RecurringRule{
			ID:             id,
			UserID:         "user-1",
			Merchant:       "Netflix",
			Amount:         4.99,
			AmountCents:    499,
			Kind:           model.KindExpense,
			Frequency:      model.FrequencyMonthly,
			NextOccurrence: next,
			Active:         true,
		}
	}

	t.Run("due rule advances from its previous occurrence, not asOf", func(t *testing.T) {
		r := rule("r1", date(2025, time.June, 1))
		actions := AdvanceDueRules(asOf, []*model.RecurringRule{r})
		if len(actions) != 1 {
			t.Fatalf("expected 1 action, got %d", len(actions))
		}
		a := actions[0]
		if a.Deactivate {
			t.Error("expected rule to stay active")
		}
		if !a.PrevNext.Equal(date(2025, time.June, 1)) {
			t.Errorf("expected prev next June 1, got %v", a.PrevNext)
		}
		// July 1, not July 15: a delayed check must not drift the schedule.
		if want := date(2025, time.July, 1); !a.NewNext.Equal(want) {
			t.Errorf("expected new next %v, got %v", want, a.NewNext)
		}
	})

	t.Run("not yet due is skipped", func(t *testing.T) {
		r := rule("r2", date(2025, time.July, 1))
		if actions := AdvanceDueRules(asOf, []*model.RecurringRule{r}); len(actions) != 0 {
			t.Fatalf("expected no actions, got %+v", actions)
		}
	})

	t.Run("inactive is skipped", func(t *testing.T) {
		r := rule("r3", date(2025, time.June, 1))
		r.Active = false
		if actions := AdvanceDueRules(asOf, []*model.RecurringRule{r}); len(actions) != 0 {
			t.Fatalf("expected no actions, got %+v", actions)
		}
	})

	t.Run("past end date deactivates without materializing", func(t *testing.T) {
		r := rule("r4", date(2025, time.June, 1))
		end := date(2025, time.May, 31)
		r.EndDate = &end
		r.AutoMaterialize = true

		actions := AdvanceDueRules(asOf, []*model.RecurringRule{r})
		if len(actions) != 1 {
			t.Fatalf("expected 1 action, got %d", len(actions))
		}
		if !actions[0].Deactivate {
			t.Error("expected deactivation")
		}
		if actions[0].Materialize {
			t.Error("expected no materialization past end date")
		}
	})

	t.Run("materialize only when the rule opts in", func(t *testing.T) {
		quiet := rule("r5", date(2025, time.June, 1))
		eager := rule("r6", date(2025, time.June, 1))
		eager.AutoMaterialize = true

		actions := AdvanceDueRules(asOf, []*model.RecurringRule{quiet, eager})
		if len(actions) != 2 {
			t.Fatalf("expected 2 actions, got %d", len(actions))
		}
		if actions[0].Materialize {
			t.Error("expected no materialization for opted-out rule")
		}
		if !actions[1].Materialize {
			t.Error("expected materialization for opted-in rule")
		}
	})
}
