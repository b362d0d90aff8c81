package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/model"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// applyDateAwarePagination handles pagination for queries with date range filters.
// Firestore requires OrderBy on inequality fields first, so we use OrderBy("date") + OrderBy(__name__).
// The cursor must include both the date value and the document ID.
func (s *FirestoreStore) applyDateAwarePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		// Fetch the cursor document to get its date value for composite StartAfter
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for cursor-based pagination.
// It fetches pageSize+1 docs so the caller can detect whether a next page exists.
func (s *FirestoreStore) applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1) // +1 to detect next page
	return query, nil
}

// Transaction operations

func (s *FirestoreStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	_, err := s.client.Collection("transactions").Doc(txn.ID).Set(ctx, txn)
	return err
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error) {
	doc, err := s.client.Collection("transactions").Doc(txnID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("transaction not found: %w", err)
	}

	var txn model.Transaction
	if err := doc.DataTo(&txn); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &txn, nil
}

func (s *FirestoreStore) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	_, err := s.client.Collection("transactions").Doc(txn.ID).Set(ctx, txn)
	return err
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, txnID string) error {
	_, err := s.client.Collection("transactions").Doc(txnID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	collection := "transactions"
	query := s.client.Collection(collection).Query

	// Field names must match the firestore struct tags on model.Transaction.
	if userID != "" {
		query = query.Where("userId", "==", userID)
	}
	if filter.Kind != "" {
		query = query.Where("kind", "==", string(filter.Kind))
	}
	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}

	hasDateFilter := filter.StartDate != nil || filter.EndDate != nil
	if filter.StartDate != nil {
		query = query.Where("date", ">=", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date", "<=", *filter.EndDate)
	}

	// When date range filters are present, Firestore requires OrderBy on the
	// range field first. Use date-aware pagination to avoid "cannot contain
	// more fields after the key" errors.
	var err error
	if hasDateFilter {
		query, err = s.applyDateAwarePagination(ctx, query, collection, pageSize, pageToken)
	} else {
		query, err = s.applyCursorPagination(query, pageSize, pageToken)
	}
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	txns := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var txn model.Transaction
		if err := doc.DataTo(&txn); err != nil {
			return nil, "", fmt.Errorf("failed to parse transaction: %w", err)
		}
		txns = append(txns, &txn)
	}
	return txns, nextPageToken, nil
}

// Recurring rule operations

func (s *FirestoreStore) CreateRecurringRule(ctx context.Context, rule *model.RecurringRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	_, err := s.client.Collection("recurringRules").Doc(rule.ID).Set(ctx, rule)
	return err
}

func (s *FirestoreStore) GetRecurringRule(ctx context.Context, ruleID string) (*model.RecurringRule, error) {
	doc, err := s.client.Collection("recurringRules").Doc(ruleID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("recurring rule not found: %w", err)
	}

	var rule model.RecurringRule
	if err := doc.DataTo(&rule); err != nil {
		return nil, fmt.Errorf("failed to parse recurring rule: %w", err)
	}
	return &rule, nil
}

func (s *FirestoreStore) UpdateRecurringRule(ctx context.Context, rule *model.RecurringRule) error {
	_, err := s.client.Collection("recurringRules").Doc(rule.ID).Set(ctx, rule)
	return err
}

func (s *FirestoreStore) DeleteRecurringRule(ctx context.Context, ruleID string) error {
	_, err := s.client.Collection("recurringRules").Doc(ruleID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListRecurringRules(ctx context.Context, userID string, activeOnly bool, pageSize int32, pageToken string) ([]*model.RecurringRule, string, error) {
	query := s.client.Collection("recurringRules").Query

	if userID != "" {
		query = query.Where("userId", "==", userID)
	}
	if activeOnly {
		query = query.Where("active", "==", true)
	}

	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list recurring rules: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	rules := make([]*model.RecurringRule, 0, len(docs))
	for _, doc := range docs {
		var rule model.RecurringRule
		if err := doc.DataTo(&rule); err != nil {
			return nil, "", fmt.Errorf("failed to parse recurring rule: %w", err)
		}
		rules = append(rules, &rule)
	}
	return rules, nextPageToken, nil
}

// AdvanceRuleOccurrence advances a rule inside a Firestore transaction so two
// concurrent processor runs cannot both advance the same rule.
func (s *FirestoreStore) AdvanceRuleOccurrence(ctx context.Context, ruleID string, prevNext, newNext time.Time, active bool) error {
	ref := s.client.Collection("recurringRules").Doc(ruleID)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("recurring rule not found: %w", err)
		}

		var rule model.RecurringRule
		if err := doc.DataTo(&rule); err != nil {
			return fmt.Errorf("failed to parse recurring rule: %w", err)
		}
		if !rule.NextOccurrence.Equal(prevNext) {
			return ErrConflict
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "nextOccurrence", Value: newNext},
			{Path: "active", Value: active},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
}

// Notification operations

func (s *FirestoreStore) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	_, err := s.client.Collection("notifications").Doc(notification.ID).Set(ctx, notification)
	return err
}

func (s *FirestoreStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool, pageSize int32, pageToken string) ([]*model.Notification, string, error) {
	query := s.client.Collection("notifications").
		Where("userId", "==", userID)

	if unreadOnly {
		query = query.Where("isRead", "==", false)
	}

	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list notifications: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	notifications := make([]*model.Notification, 0, len(docs))
	for _, doc := range docs {
		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, "", fmt.Errorf("failed to parse notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, nextPageToken, nil
}

func (s *FirestoreStore) MarkNotificationRead(ctx context.Context, notificationID string) error {
	_, err := s.client.Collection("notifications").Doc(notificationID).Update(ctx, []firestore.Update{
		{Path: "isRead", Value: true},
	})
	if err != nil {
		return fmt.Errorf("notification not found: %w", err)
	}
	return nil
}

func (s *FirestoreStore) HasNotification(ctx context.Context, userID string, nType model.NotificationType, referenceID, metaKey, metaValue string, withinHours int) (bool, error) {
	query := s.client.Collection("notifications").
		Where("userId", "==", userID).
		Where("type", "==", string(nType)).
		Where("referenceId", "==", referenceID)

	if withinHours > 0 {
		cutoff := time.Now().Add(-time.Duration(withinHours) * time.Hour)
		query = query.Where("createdAt", ">=", cutoff)
	}

	query = query.OrderBy("createdAt", firestore.Asc).Limit(50)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("failed to check for existing notification: %w", err)
	}

	if metaKey == "" {
		return len(docs) > 0, nil
	}

	// Check metadata match
	for _, doc := range docs {
		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		if n.Metadata != nil && n.Metadata[metaKey] == metaValue {
			return true, nil
		}
	}
	return false, nil
}

func (s *FirestoreStore) GetNotificationPreferences(ctx context.Context, userID string) (*model.NotificationPreferences, error) {
	doc, err := s.client.Collection("notificationPreferences").Doc(userID).Get(ctx)
	if err != nil {
		// New users get the defaults without an explicit setup step.
		return model.DefaultNotificationPreferences(userID), nil
	}

	var prefs model.NotificationPreferences
	if err := doc.DataTo(&prefs); err != nil {
		return nil, fmt.Errorf("failed to parse notification preferences: %w", err)
	}
	return &prefs, nil
}

func (s *FirestoreStore) UpdateNotificationPreferences(ctx context.Context, prefs *model.NotificationPreferences) error {
	_, err := s.client.Collection("notificationPreferences").Doc(prefs.UserID).Set(ctx, prefs)
	return err
}
