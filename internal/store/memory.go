package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/model"
)

// MemoryStore implements Store with in-memory storage. Used for local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions  map[string]*model.Transaction
	rules         map[string]*model.RecurringRule
	notifications map[string]*model.Notification
	preferences   map[string]*model.NotificationPreferences
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions:  make(map[string]*model.Transaction),
		rules:         make(map[string]*model.RecurringRule),
		notifications: make(map[string]*model.Notification),
		preferences:   make(map[string]*model.NotificationPreferences),
	}
}

// paginateIDs applies cursor-based pagination to a slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	// Find cursor position
	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
				// If we've reached the end without finding a greater ID
				if i == len(ids)-1 {
					return nil, ""
				}
			}
		}
	}

	ids = ids[startIdx:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}

	m.transactions[txn.ID] = txn
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txn, ok := m.transactions[txnID]
	if !ok {
		return nil, fmt.Errorf("transaction not found: %s", txnID)
	}

	return txn, nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[txn.ID]; !ok {
		return fmt.Errorf("transaction not found: %s", txn.ID)
	}

	m.transactions[txn.ID] = txn
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, txnID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.transactions, txnID)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// First pass: collect matching IDs
	var matchingIDs []string
	for id, txn := range m.transactions {
		if userID != "" && txn.UserID != userID {
			continue
		}
		if !filter.Matches(txn) {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Transaction, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.transactions[id])
	}
	return result, nextToken, nil
}

// Recurring rule operations

func (m *MemoryStore) CreateRecurringRule(ctx context.Context, rule *model.RecurringRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	m.rules[rule.ID] = rule
	return nil
}

func (m *MemoryStore) GetRecurringRule(ctx context.Context, ruleID string) (*model.RecurringRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rule, ok := m.rules[ruleID]
	if !ok {
		return nil, fmt.Errorf("recurring rule not found: %s", ruleID)
	}

	return rule, nil
}

func (m *MemoryStore) UpdateRecurringRule(ctx context.Context, rule *model.RecurringRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rules[rule.ID]; !ok {
		return fmt.Errorf("recurring rule not found: %s", rule.ID)
	}

	m.rules[rule.ID] = rule
	return nil
}

func (m *MemoryStore) DeleteRecurringRule(ctx context.Context, ruleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rules, ruleID)
	return nil
}

func (m *MemoryStore) ListRecurringRules(ctx context.Context, userID string, activeOnly bool, pageSize int32, pageToken string) ([]*model.RecurringRule, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, rule := range m.rules {
		if userID != "" && rule.UserID != userID {
			continue
		}
		if activeOnly && !rule.Active {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.RecurringRule, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.rules[id])
	}
	return result, nextToken, nil
}

func (m *MemoryStore) AdvanceRuleOccurrence(ctx context.Context, ruleID string, prevNext, newNext time.Time, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rule, ok := m.rules[ruleID]
	if !ok {
		return fmt.Errorf("recurring rule not found: %s", ruleID)
	}
	if !rule.NextOccurrence.Equal(prevNext) {
		return ErrConflict
	}

	rule.NextOccurrence = newNext
	rule.Active = active
	rule.UpdatedAt = time.Now()
	return nil
}

// Notification operations

func (m *MemoryStore) CreateNotification(ctx context.Context, notification *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	m.notifications[notification.ID] = notification
	return nil
}

func (m *MemoryStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool, pageSize int32, pageToken string) ([]*model.Notification, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Notification, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.notifications[id])
	}
	return result, nextToken, nil
}

func (m *MemoryStore) MarkNotificationRead(ctx context.Context, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[notificationID]
	if !ok {
		return fmt.Errorf("notification not found: %s", notificationID)
	}

	n.IsRead = true
	return nil
}

func (m *MemoryStore) HasNotification(ctx context.Context, userID string, nType model.NotificationType, referenceID, metaKey, metaValue string, withinHours int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().Add(-time.Duration(withinHours) * time.Hour)
	for _, n := range m.notifications {
		if n.UserID != userID || n.Type != nType {
			continue
		}
		if n.CreatedAt.Before(cutoff) {
			continue
		}
		if referenceID != "" && n.ReferenceID != referenceID {
			continue
		}
		if metaKey != "" && n.Metadata[metaKey] != metaValue {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (m *MemoryStore) GetNotificationPreferences(ctx context.Context, userID string) (*model.NotificationPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefs, ok := m.preferences[userID]
	if !ok {
		// New users get the defaults without an explicit setup step.
		return model.DefaultNotificationPreferences(userID), nil
	}

	return prefs, nil
}

func (m *MemoryStore) UpdateNotificationPreferences(ctx context.Context, prefs *model.NotificationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.preferences[prefs.UserID] = prefs
	return nil
}
