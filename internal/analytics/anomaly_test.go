package analytics

import (
	"testing"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

func expense(id, category string, amount float64, day time.Time, createdAt time.Time) *model.Transaction {
	return &model.Transaction{
		ID:          id,
		UserID:      "user-1",
		Kind:        model.KindExpense,
		Amount:      amount,
		AmountCents: int64(amount * 100),
		Category:    category,
		Merchant:    "merchant-" + id,
		Date:        day,
		CreatedAt:   createdAt,
	}
}

func TestDetectAnomaliesSpike(t *testing.T) {
	base := date(2025, time.June, 1)
	history := []*model.Transaction{
		expense("h1", "Dining", 100, base, base),
		expense("h2", "Dining", 102, base.AddDate(0, 0, 7), base.AddDate(0, 0, 7)),
		expense("h3", "Dining", 98, base.AddDate(0, 0, 14), base.AddDate(0, 0, 14)),
		expense("h4", "Dining", 101, base.AddDate(0, 0, 21), base.AddDate(0, 0, 21)),
	}

	t.Run("amount far above category history is a high-severity spike", func(t *testing.T) {
		candidate := expense("c1", "Dining", 500, base.AddDate(0, 0, 28), base.AddDate(0, 0, 28))
		findings := DetectAnomalies(append(history, candidate), DefaultAnomalyConfig())

		if len(findings) != 1 {
			t.Fatalf("expected exactly 1 finding, got %d: %+v", len(findings), findings)
		}
		f := findings[0]
		if f.Kind != FindingSpike {
			t.Errorf("expected spike, got %s", f.Kind)
		}
		if f.Severity != SeverityHigh {
			t.Errorf("expected high severity, got %s", f.Severity)
		}
		if f.TransactionID != "c1" {
			t.Errorf("expected finding for c1, got %s", f.TransactionID)
		}
		if f.Category != "Dining" {
			t.Errorf("expected Dining category, got %s", f.Category)
		}
	})

	t.Run("amount near category history is not a spike", func(t *testing.T) {
		candidate := expense("c2", "Dining", 103, base.AddDate(0, 0, 28), base.AddDate(0, 0, 28))
		findings := DetectAnomalies(append(history, candidate), DefaultAnomalyConfig())
		if len(findings) != 0 {
			t.Fatalf("expected no findings, got %+v", findings)
		}
	})

	t.Run("no category history means skip, not finding", func(t *testing.T) {
		candidate := expense("c3", "Travel", 5000, base, base)
		findings := DetectAnomalies(append(history, candidate), DefaultAnomalyConfig())
		if len(findings) != 0 {
			t.Fatalf("expected no findings for unmatched category, got %+v", findings)
		}
	})

	t.Run("income is never evaluated as a spike", func(t *testing.T) {
		candidate := expense("c4", "Dining", 500, base.AddDate(0, 0, 28), base.AddDate(0, 0, 28))
		candidate.Kind = model.KindIncome
		findings := DetectAnomalies(append(history, candidate), DefaultAnomalyConfig())
		if len(findings) != 0 {
			t.Fatalf("expected no findings for income, got %+v", findings)
		}
	})
}

func TestDetectAnomaliesDuplicates(t *testing.T) {
	day := date(2025, time.June, 15)
	created := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

	t.Run("same amount created 10 minutes apart is one duplicate finding", func(t *testing.T) {
		txns := []*model.Transaction{
			expense("d1", "Shopping", 250, day, created),
			expense("d2", "Shopping", 250, day, created.Add(10*time.Minute)),
		}
		findings := DetectAnomalies(txns, DefaultAnomalyConfig())
		if len(findings) != 1 {
			t.Fatalf("expected exactly 1 finding, got %d: %+v", len(findings), findings)
		}
		f := findings[0]
		if f.Kind != FindingDuplicate {
			t.Errorf("expected duplicate, got %s", f.Kind)
		}
		if f.Severity != SeverityMedium {
			t.Errorf("expected medium severity, got %s", f.Severity)
		}
		if f.RelatedID == "" || f.RelatedID == f.TransactionID {
			t.Errorf("expected finding to reference both transactions, got %q and %q", f.TransactionID, f.RelatedID)
		}
	})

	t.Run("90 minutes apart is not a duplicate", func(t *testing.T) {
		txns := []*model.Transaction{
			expense("d3", "Shopping", 250, day, created),
			expense("d4", "Shopping", 250, day, created.Add(90*time.Minute)),
		}
		if findings := DetectAnomalies(txns, DefaultAnomalyConfig()); len(findings) != 0 {
			t.Fatalf("expected no findings, got %+v", findings)
		}
	})

	t.Run("identical creation timestamp is not a duplicate", func(t *testing.T) {
		// Strictly greater than zero: batch imports share a timestamp.
		txns := []*model.Transaction{
			expense("d5", "Shopping", 250, day, created),
			expense("d6", "Shopping", 250, day, created),
		}
		if findings := DetectAnomalies(txns, DefaultAnomalyConfig()); len(findings) != 0 {
			t.Fatalf("expected no findings, got %+v", findings)
		}
	})

	t.Run("different kinds never pair", func(t *testing.T) {
		a := expense("d7", "Shopping", 250, day, created)
		b := expense("d8", "Shopping", 250, day, created.Add(10*time.Minute))
		b.Kind = model.KindIncome
		if findings := DetectAnomalies([]*model.Transaction{a, b}, DefaultAnomalyConfig()); len(findings) != 0 {
			t.Fatalf("expected no findings, got %+v", findings)
		}
	})
}

func TestDetectAnomaliesOrdering(t *testing.T) {
	base := date(2025, time.June, 1)
	created := time.Date(2025, time.June, 29, 9, 0, 0, 0, time.UTC)
	txns := []*model.Transaction{
		expense("h1", "Dining", 100, base, base),
		expense("h2", "Dining", 102, base.AddDate(0, 0, 7), base.AddDate(0, 0, 7)),
		expense("h3", "Dining", 98, base.AddDate(0, 0, 14), base.AddDate(0, 0, 14)),
		expense("h4", "Dining", 101, base.AddDate(0, 0, 21), base.AddDate(0, 0, 21)),
		expense("c1", "Dining", 500, base.AddDate(0, 0, 28), created),
		expense("p1", "Shopping", 250, base.AddDate(0, 0, 27), created),
		expense("p2", "Shopping", 250, base.AddDate(0, 0, 27), created.Add(5*time.Minute)),
	}

	findings := DetectAnomalies(txns, DefaultAnomalyConfig())
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(findings), findings)
	}
	if findings[0].Kind != FindingSpike {
		t.Errorf("expected spike first, got %s", findings[0].Kind)
	}
	if findings[1].Kind != FindingDuplicate {
		t.Errorf("expected duplicate second, got %s", findings[1].Kind)
	}
}

func TestDetectAnomaliesEmptyInput(t *testing.T) {
	findings := DetectAnomalies(nil, DefaultAnomalyConfig())
	if findings == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %+v", findings)
	}
}
