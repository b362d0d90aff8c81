package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

func TestAnalyzeSpendingPatterns(t *testing.T) {
	now := date(2025, time.June, 15)

	t.Run("aggregates per category with monthly trend", func(t *testing.T) {
		txns := []*model.Transaction{
			expense("g1", "Groceries", 100, date(2025, time.April, 10), now),
			expense("g2", "Groceries", 120, date(2025, time.May, 10), now),
			expense("g3", "Groceries", 110, date(2025, time.June, 10), now),
			expense("d1", "Dining", 40, date(2025, time.June, 1), now),
			expense("d2", "Dining", 60, date(2025, time.June, 2), now),
		}

		aggs := AnalyzeSpendingPatterns(txns, now)
		if len(aggs) != 2 {
			t.Fatalf("expected 2 aggregates, got %d", len(aggs))
		}

		// Sorted by descending mean: Groceries (110) before Dining (50).
		groceries, dining := aggs[0], aggs[1]
		if groceries.Category != "Groceries" || dining.Category != "Dining" {
			t.Fatalf("unexpected order: %s, %s", aggs[0].Category, aggs[1].Category)
		}
		if groceries.Mean != 110 {
			t.Errorf("expected groceries mean 110, got %f", groceries.Mean)
		}
		if groceries.Count != 3 {
			t.Errorf("expected 3 groceries observations, got %d", groceries.Count)
		}
		// Six buckets ending June 2025: Jan..Jun, most recent last.
		wantTrend := []float64{0, 0, 0, 100, 120, 110}
		if !reflect.DeepEqual(groceries.MonthlyTrend, wantTrend) {
			t.Errorf("expected trend %v, got %v", wantTrend, groceries.MonthlyTrend)
		}
		if math.Abs(groceries.Confidence-0.3) > 1e-12 {
			t.Errorf("expected confidence 0.3 for 3 samples, got %f", groceries.Confidence)
		}
		if dining.StdDev != 10 {
			t.Errorf("expected dining population stddev 10, got %f", dining.StdDev)
		}
	})

	t.Run("categories with one observation are dropped", func(t *testing.T) {
		txns := []*model.Transaction{
			expense("x1", "Travel", 900, date(2025, time.June, 1), now),
			expense("g1", "Groceries", 100, date(2025, time.May, 1), now),
			expense("g2", "Groceries", 100, date(2025, time.June, 1), now),
		}
		aggs := AnalyzeSpendingPatterns(txns, now)
		if len(aggs) != 1 || aggs[0].Category != "Groceries" {
			t.Fatalf("expected only Groceries, got %+v", aggs)
		}
	})

	t.Run("missing category resolves to sentinel", func(t *testing.T) {
		txns := []*model.Transaction{
			expense("u1", "", 10, date(2025, time.May, 1), now),
			expense("u2", "", 20, date(2025, time.June, 1), now),
		}
		aggs := AnalyzeSpendingPatterns(txns, now)
		if len(aggs) != 1 || aggs[0].Category != UncategorizedLabel {
			t.Fatalf("expected %s aggregate, got %+v", UncategorizedLabel, aggs)
		}
	})

	t.Run("income and transfers are ignored", func(t *testing.T) {
		salary := expense("i1", "Salary", 5000, date(2025, time.June, 1), now)
		salary.Kind = model.KindIncome
		move := expense("t1", "Savings", 1000, date(2025, time.June, 1), now)
		move.Kind = model.KindTransfer
		if aggs := AnalyzeSpendingPatterns([]*model.Transaction{salary, move}, now); len(aggs) != 0 {
			t.Fatalf("expected no aggregates, got %+v", aggs)
		}
	})

	t.Run("confidence saturates at ten samples", func(t *testing.T) {
		var txns []*model.Transaction
		for i := 0; i < 14; i++ {
			txns = append(txns, expense(
				string(rune('a'+i)), "Groceries", 50,
				date(2025, time.June, 1).AddDate(0, 0, i), now))
		}
		aggs := AnalyzeSpendingPatterns(txns, now)
		if len(aggs) != 1 {
			t.Fatalf("expected 1 aggregate, got %d", len(aggs))
		}
		if aggs[0].Confidence != 1 {
			t.Errorf("expected saturated confidence 1, got %f", aggs[0].Confidence)
		}
	})

	t.Run("output is independent of input order", func(t *testing.T) {
		txns := []*model.Transaction{
			expense("g1", "Groceries", 100, date(2025, time.April, 10), now),
			expense("g2", "Groceries", 120, date(2025, time.May, 10), now),
			expense("d1", "Dining", 40, date(2025, time.June, 1), now),
			expense("d2", "Dining", 60, date(2025, time.June, 2), now),
		}
		reversed := make([]*model.Transaction, len(txns))
		for i, tx := range txns {
			reversed[len(txns)-1-i] = tx
		}

		first := AnalyzeSpendingPatterns(txns, now)
		second := AnalyzeSpendingPatterns(reversed, now)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("expected identical aggregates regardless of order:\n%+v\n%+v", first, second)
		}
		// And running twice on the same input is idempotent.
		if again := AnalyzeSpendingPatterns(txns, now); !reflect.DeepEqual(first, again) {
			t.Errorf("expected idempotent output, got:\n%+v\n%+v", first, again)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		aggs := AnalyzeSpendingPatterns(nil, now)
		if aggs == nil || len(aggs) != 0 {
			t.Fatalf("expected empty non-nil slice, got %v", aggs)
		}
	})
}
