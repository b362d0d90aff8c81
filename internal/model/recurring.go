package model

import "time"

// Frequency is the cadence class of a recurring rule.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether f is one of the known frequency classes.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringRule is a confirmed recurring transaction: a (merchant, amount)
// pair that repeats on a known cadence. Rules are created by a user accepting
// a detected candidate (or entering one manually); the detector itself never
// persists anything.
type RecurringRule struct {
	ID          string          `json:"id" firestore:"id"`
	UserID      string          `json:"user_id" firestore:"userId"`
	Merchant    string          `json:"merchant" firestore:"merchant"`
	Amount      float64         `json:"amount" firestore:"amount"`
	AmountCents int64           `json:"amount_cents" firestore:"amountCents"`
	Category    string          `json:"category,omitempty" firestore:"category"`
	Kind        TransactionKind `json:"kind" firestore:"kind"`
	Frequency   Frequency       `json:"frequency" firestore:"frequency"`
	FirstSeen   time.Time       `json:"first_seen" firestore:"firstSeen"`
	// NextOccurrence is the next date the rule is expected to fire. Advanced
	// by the processor one period at a time from its previous value.
	NextOccurrence time.Time  `json:"next_occurrence" firestore:"nextOccurrence"`
	EndDate        *time.Time `json:"end_date,omitempty" firestore:"endDate"`
	Active         bool       `json:"active" firestore:"active"`
	// AutoMaterialize controls whether the processor creates a ledger entry
	// when the rule comes due. Off by default; the user opts in.
	AutoMaterialize bool      `json:"auto_materialize" firestore:"autoMaterialize"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt"`
}
