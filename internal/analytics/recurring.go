package analytics

import (
	"sort"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

// RuleCandidate is an inferred, not-yet-confirmed hypothesis that a
// (merchant, amount) pair recurs on a regular cadence. Candidates are handed
// to the caller to accept, edit, or discard; this package never persists
// them and never turns auto-materialization on by itself.
type RuleCandidate struct {
	Merchant       string          `json:"merchant"`
	Amount         float64         `json:"amount"`
	AmountCents    int64           `json:"amount_cents"`
	Category       string          `json:"category"`
	Frequency      model.Frequency `json:"frequency"`
	FirstSeen      time.Time       `json:"first_seen"`
	LastSeen       time.Time       `json:"last_seen"`
	NextOccurrence time.Time       `json:"next_occurrence"`
	Occurrences    int             `json:"occurrences"`
	AverageGapDays float64         `json:"average_gap_days"`
}

// classifyFrequency maps an average inter-occurrence gap to a cadence class.
// The thresholds are midpoints between canonical periods (1, 7, 14, ~30, ~91,
// 365 days); they are part of the detector's observable behavior and must
// not drift.
func classifyFrequency(avgGapDays float64) model.Frequency {
	switch {
	case avgGapDays < 2:
		return model.FrequencyDaily
	case avgGapDays < 10:
		return model.FrequencyWeekly
	case avgGapDays < 20:
		return model.FrequencyBiweekly
	case avgGapDays < 60:
		return model.FrequencyMonthly
	case avgGapDays < 120:
		return model.FrequencyQuarterly
	default:
		return model.FrequencyYearly
	}
}

// DetectRecurringCandidates groups expense transactions by exact
// (merchant, amount), measures inter-occurrence gaps, and emits one
// candidate per group with at least two occurrences. The next occurrence is
// the most recent occurrence advanced by one period, calendar-aware for
// month-based cadences. Candidates appear in the order their group first
// occurs in date order, so output is deterministic for identical input.
func DetectRecurringCandidates(txns []*model.Transaction) []RuleCandidate {
	type key struct {
		merchant string
		cents    int64
	}

	expenses := make([]*model.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Kind == model.KindExpense {
			expenses = append(expenses, t)
		}
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.Before(expenses[j].Date)
		}
		return expenses[i].ID < expenses[j].ID
	})

	groups := make(map[key][]*model.Transaction)
	var order []key
	for _, t := range expenses {
		k := key{merchant: t.Merchant, cents: amountCents(t)}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], t)
	}

	candidates := []RuleCandidate{}
	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}

		var gapSum float64
		for i := 1; i < len(group); i++ {
			gapSum += group[i].Date.Sub(group[i-1].Date).Hours() / 24
		}
		avgGap := gapSum / float64(len(group)-1)
		freq := classifyFrequency(avgGap)

		first := group[0]
		last := group[len(group)-1]
		candidates = append(candidates, RuleCandidate{
			Merchant:       first.Merchant,
			Amount:         first.Amount,
			AmountCents:    amountCents(first),
			Category:       categoryOrDefault(first.Category),
			Frequency:      freq,
			FirstSeen:      first.Date,
			LastSeen:       last.Date,
			NextOccurrence: NextOccurrence(last.Date, freq),
			Occurrences:    len(group),
			AverageGapDays: avgGap,
		})
	}
	return candidates
}

// amountCents returns the transaction's cents value, deriving it from the
// float amount for records written before cents were stored.
func amountCents(t *model.Transaction) int64 {
	if t.AmountCents != 0 {
		return t.AmountCents
	}
	return int64(t.Amount*100 + 0.5)
}

// DueAction is the planned outcome for one due rule: either deactivate it,
// or (optionally) materialize a ledger entry and advance its next
// occurrence. Applying the plan (writing the ledger entry and persisting
// the advancement atomically) is the caller's responsibility.
type DueAction struct {
	Rule        *model.RecurringRule
	Deactivate  bool
	Materialize bool
	// PrevNext is the occurrence the rule was due at; the caller should use
	// it as the condition for a compare-and-swap update so two concurrent
	// checks cannot both advance the same rule.
	PrevNext time.Time
	NewNext  time.Time
}

// AdvanceDueRules plans processing for every active rule due at or before
// asOf. Advancement always steps one period from the rule's previous next
// occurrence, never from asOf: a delayed check must not drift the schedule.
// A rule more than one period overdue catches up across successive calls.
func AdvanceDueRules(asOf time.Time, rules []*model.RecurringRule) []DueAction {
	actions := []DueAction{}
	for _, r := range rules {
		if !r.Active || r.NextOccurrence.After(asOf) {
			continue
		}
		if r.EndDate != nil && r.NextOccurrence.After(*r.EndDate) {
			actions = append(actions, DueAction{Rule: r, Deactivate: true, PrevNext: r.NextOccurrence})
			continue
		}
		actions = append(actions, DueAction{
			Rule:        r,
			Materialize: r.AutoMaterialize,
			PrevNext:    r.NextOccurrence,
			NewNext:     NextOccurrence(r.NextOccurrence, r.Frequency),
		})
	}
	return actions
}
