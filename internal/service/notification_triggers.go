package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/model"
	"github.com/finsight-app/backend/internal/store"
)

// NotificationTrigger creates in-app notifications from financial events.
// Every trigger is best-effort: preference checks, dedup lookups and create
// failures are logged and swallowed so they never fail the calling operation.
type NotificationTrigger struct {
	store store.Store
	log   zerolog.Logger
}

func NewNotificationTrigger(st store.Store, log zerolog.Logger) *NotificationTrigger {
	return &NotificationTrigger{store: st, log: log}
}

// AnomalyAlert records a detected anomaly as a notification.
// Deduplication: one notification per finding kind per transaction per day,
// so re-running detection over the same window stays quiet.
func (t *NotificationTrigger) AnomalyAlert(ctx context.Context, userID string, finding analytics.Finding) {
	prefs, err := t.store.GetNotificationPreferences(ctx, userID)
	if err != nil || !prefs.AnomalyAlerts {
		return
	}

	exists, err := t.store.HasNotification(ctx, userID,
		model.NotificationAnomalyAlert,
		finding.TransactionID, "kind", string(finding.Kind), 24)
	if err != nil {
		t.log.Warn().Err(err).Str("user_id", userID).Msg("failed to check for existing anomaly alert")
		return
	}
	if exists {
		return
	}

	notification := &model.Notification{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          model.NotificationAnomalyAlert,
		Title:         finding.Title,
		Message:       finding.Description,
		ActionURL:     "/transactions/",
		ReferenceID:   finding.TransactionID,
		ReferenceType: "transaction",
		Metadata: map[string]string{
			"kind":     string(finding.Kind),
			"severity": string(finding.Severity),
		},
	}

	if err := t.store.CreateNotification(ctx, notification); err != nil {
		t.log.Warn().Err(err).Str("user_id", userID).Msg("failed to create anomaly alert notification")
	}
}

// BillReminder records a reminder for an upcoming recurring rule.
// Deduplication: one reminder per rule per 30 days, roughly one per billing
// cycle for the monthly rules that dominate.
func (t *NotificationTrigger) BillReminder(ctx context.Context, userID string, rule *model.RecurringRule) {
	prefs, err := t.store.GetNotificationPreferences(ctx, userID)
	if err != nil || !prefs.BillReminders {
		return
	}

	exists, err := t.store.HasNotification(ctx, userID,
		model.NotificationBillReminder, rule.ID, "", "", 720)
	if err != nil {
		t.log.Warn().Err(err).Str("user_id", userID).Msg("failed to check for existing bill reminder")
		return
	}
	if exists {
		return
	}

	notification := &model.Notification{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          model.NotificationBillReminder,
		Title:         fmt.Sprintf("Upcoming Bill: %s", rule.Merchant),
		Message:       fmt.Sprintf("Your %s payment of $%.2f is due on %s.", rule.Merchant, rule.Amount, rule.NextOccurrence.Format("Jan 2")),
		ActionURL:     "/recurring/",
		ReferenceID:   rule.ID,
		ReferenceType: "recurring_rule",
	}

	if err := t.store.CreateNotification(ctx, notification); err != nil {
		t.log.Warn().Err(err).Str("user_id", userID).Msg("failed to create bill reminder notification")
	}
}
