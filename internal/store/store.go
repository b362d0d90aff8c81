package store

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrConflict is returned by AdvanceRuleOccurrence when the rule's next
// occurrence no longer matches the expected value: another processor run got
// there first.
var ErrConflict = errors.New("store: conditional update conflict")

// Store defines the interface for all database operations used by the service.
type Store interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, txnID string) error
	ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error)

	// Recurring rule operations
	CreateRecurringRule(ctx context.Context, rule *model.RecurringRule) error
	GetRecurringRule(ctx context.Context, ruleID string) (*model.RecurringRule, error)
	UpdateRecurringRule(ctx context.Context, rule *model.RecurringRule) error
	DeleteRecurringRule(ctx context.Context, ruleID string) error
	ListRecurringRules(ctx context.Context, userID string, activeOnly bool, pageSize int32, pageToken string) ([]*model.RecurringRule, string, error)
	// AdvanceRuleOccurrence updates a rule's next occurrence (and active
	// flag) only if its current next occurrence equals prevNext, so two
	// concurrent processor runs cannot both advance the same rule.
	AdvanceRuleOccurrence(ctx context.Context, ruleID string, prevNext, newNext time.Time, active bool) error

	// Notification operations
	CreateNotification(ctx context.Context, notification *model.Notification) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, pageSize int32, pageToken string) ([]*model.Notification, string, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	// HasNotification reports whether a notification of the given type,
	// reference and metadata entry was created within the past withinHours.
	// Used to deduplicate repeated alerts.
	HasNotification(ctx context.Context, userID string, nType model.NotificationType, referenceID, metaKey, metaValue string, withinHours int) (bool, error)
	GetNotificationPreferences(ctx context.Context, userID string) (*model.NotificationPreferences, error)
	UpdateNotificationPreferences(ctx context.Context, prefs *model.NotificationPreferences) error
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
