package model

import "time"

// TransactionKind distinguishes money in, money out, and internal moves.
type TransactionKind string

const (
	KindIncome   TransactionKind = "income"
	KindExpense  TransactionKind = "expense"
	KindTransfer TransactionKind = "transfer"
)

// Valid reports whether k is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	}
	return false
}

// Transaction is a single ledger entry. Amount is always non-negative;
// direction is carried by Kind, never by the sign of the amount.
type Transaction struct {
	ID          string          `json:"id" firestore:"id"`
	UserID      string          `json:"user_id" firestore:"userId"`
	Kind        TransactionKind `json:"kind" firestore:"kind"`
	Amount      float64         `json:"amount" firestore:"amount"`
	AmountCents int64           `json:"amount_cents" firestore:"amountCents"`
	Category    string          `json:"category,omitempty" firestore:"category"`
	Merchant    string          `json:"merchant,omitempty" firestore:"merchant"`
	// Date is the calendar day the transaction occurred (time component zeroed).
	Date      time.Time `json:"date" firestore:"date"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
	Tags      []string  `json:"tags,omitempty" firestore:"tags"`
	Notes     string    `json:"notes,omitempty" firestore:"notes"`
}

// TransactionFilter narrows ListTransactions results. Nil date bounds and
// empty string fields mean "no constraint".
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Kind      TransactionKind
	Category  string
}

// Matches reports whether t satisfies every constraint set on f.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.StartDate != nil && t.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.Date.After(*f.EndDate) {
		return false
	}
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}
