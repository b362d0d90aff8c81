package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/model"
)

// FindingKind classifies what an anomaly finding is about.
type FindingKind string

const (
	FindingSpike     FindingKind = "spike"
	FindingDuplicate FindingKind = "duplicate"
	// FindingPatternBreak is reserved for breaks in an established recurring
	// pattern (e.g. a subscription that stopped charging).
	FindingPatternBreak FindingKind = "pattern-break"
)

// Severity ranks how urgent a finding is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Finding is a single detected anomaly. Findings are produced fresh on every
// detection run and never persisted by this package; deduplicating against
// previously surfaced findings is the caller's job.
type Finding struct {
	ID            string      `json:"id"`
	Kind          FindingKind `json:"kind"`
	Severity      Severity    `json:"severity"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Amount        float64     `json:"amount"`
	AmountCents   int64       `json:"amount_cents"`
	Date          time.Time   `json:"date"`
	Category      string      `json:"category,omitempty"`
	TransactionID string      `json:"transaction_id,omitempty"`
	// RelatedID is the other transaction of a duplicate pair.
	RelatedID string `json:"related_id,omitempty"`
}

// AnomalyConfig carries the detection thresholds. The defaults are tuned
// heuristics; they are exposed here rather than hardcoded so callers can
// tighten or relax detection without a code change.
type AnomalyConfig struct {
	// SpikeSigma is the number of standard deviations above the category mean
	// at which an amount counts as a spike.
	SpikeSigma float64
	// SimilarityTolerance bounds which historical amounts count as "similar"
	// when building the comparison set, as a fraction of the candidate amount.
	SimilarityTolerance float64
	// DuplicateWindow is the maximum creation-time gap for two matching
	// transactions to count as an accidental double entry.
	DuplicateWindow time.Duration
	// RecentCount is how many of the most recent transactions are evaluated
	// as spike candidates.
	RecentCount int
}

// DefaultAnomalyConfig returns the standard thresholds: 2 sigma, 20%
// similarity, 60-minute duplicate window, 10 candidates.
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		SpikeSigma:          2.0,
		SimilarityTolerance: 0.20,
		DuplicateWindow:     60 * time.Minute,
		RecentCount:         10,
	}
}

// DetectAnomalies scans a window of transactions for amount spikes and
// near-duplicate entries. It never mutates its input and returns an empty
// slice (never an error) when there is nothing to report: missing history is
// a normal state for a new user, not a failure.
//
// Spike detection evaluates the most recent RecentCount expense transactions
// against same-category history from the window; duplicate detection compares
// every unordered pair once. Spikes come first in scan order (most recent
// first), then duplicates in pair-scan order.
func DetectAnomalies(txns []*model.Transaction, cfg AnomalyConfig) []Finding {
	findings := []Finding{}
	if len(txns) == 0 {
		return findings
	}

	// Stable scan order: most recent first, ID as tie-break so identical
	// inputs always produce identical output.
	ordered := make([]*model.Transaction, len(txns))
	copy(ordered, txns)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.After(ordered[j].Date)
		}
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	evaluated := 0
	for _, t := range ordered {
		if evaluated >= cfg.RecentCount {
			break
		}
		if t.Kind != model.KindExpense {
			continue
		}
		evaluated++

		if f, ok := detectSpike(t, ordered, cfg); ok {
			findings = append(findings, f)
		}
	}

	findings = append(findings, detectDuplicates(ordered, cfg)...)
	return findings
}

// detectSpike compares t against similar same-category expense history. The
// similarity filter anchors on the history's own baseline, not on t: the
// candidate under test must not be allowed to drag the comparison set (or
// its statistics) toward itself, or large outliers would mask themselves.
// At least one similar transaction is required; with none there is no
// history to deviate from, which is a skip, not an error.
func detectSpike(t *model.Transaction, window []*model.Transaction, cfg AnomalyConfig) (Finding, bool) {
	var history []float64
	for _, other := range window {
		if other.ID == t.ID || other.Kind != model.KindExpense {
			continue
		}
		if other.Category != t.Category {
			continue
		}
		history = append(history, other.Amount)
	}
	if len(history) == 0 {
		return Finding{}, false
	}

	baseline := Mean(history)
	var similar []float64
	for _, a := range history {
		if baseline > 0 {
			lo := baseline * (1 - cfg.SimilarityTolerance)
			hi := baseline * (1 + cfg.SimilarityTolerance)
			if a < lo || a > hi {
				continue
			}
		}
		similar = append(similar, a)
	}
	if len(similar) < 1 {
		return Finding{}, false
	}

	mean := Mean(similar)
	sd := StdDev(similar)
	if t.Amount <= mean+cfg.SpikeSigma*sd {
		return Finding{}, false
	}

	category := categoryOrDefault(t.Category)
	merchant := t.Merchant
	if merchant == "" {
		merchant = "an unknown merchant"
	}
	return Finding{
		ID:       uuid.New().String(),
		Kind:     FindingSpike,
		Severity: SeverityHigh,
		Title:    fmt.Sprintf("Unusual %s spending", category),
		Description: fmt.Sprintf("%.2f at %s is well above your %s average of %.2f.",
			t.Amount, merchant, category, mean),
		Amount:        t.Amount,
		AmountCents:   t.AmountCents,
		Date:          t.Date,
		Category:      category,
		TransactionID: t.ID,
	}, true
}

// detectDuplicates flags pairs with identical amount and kind created within
// the duplicate window of each other. The bounds are strict on both sides: a
// zero gap is assumed to be a batch import, not a double entry, and anything
// at or past the window is treated as intentional.
func detectDuplicates(window []*model.Transaction, cfg AnomalyConfig) []Finding {
	var findings []Finding
	for i := 0; i < len(window); i++ {
		for j := i + 1; j < len(window); j++ {
			a, b := window[i], window[j]
			if a.Amount != b.Amount || a.Kind != b.Kind {
				continue
			}
			gap := a.CreatedAt.Sub(b.CreatedAt)
			if gap < 0 {
				gap = -gap
			}
			if gap <= 0 || gap >= cfg.DuplicateWindow {
				continue
			}
			findings = append(findings, Finding{
				ID:       uuid.New().String(),
				Kind:     FindingDuplicate,
				Severity: SeverityMedium,
				Title:    "Possible duplicate transaction",
				Description: fmt.Sprintf("Two %s transactions of %.2f were created %d minutes apart.",
					a.Kind, a.Amount, int(gap.Minutes())),
				Amount:        a.Amount,
				AmountCents:   a.AmountCents,
				Date:          a.Date,
				Category:      categoryOrDefault(a.Category),
				TransactionID: a.ID,
				RelatedID:     b.ID,
			})
		}
	}
	return findings
}
