package model

import "time"

// NotificationType labels what kind of event produced a notification.
type NotificationType string

const (
	NotificationAnomalyAlert NotificationType = "anomaly_alert"
	NotificationBillReminder NotificationType = "bill_reminder"
	NotificationWeeklyDigest NotificationType = "weekly_digest"
)

// Notification is an in-app notification record. Delivery (push, email) is a
// separate concern; this is only the stored record.
type Notification struct {
	ID            string            `json:"id" firestore:"id"`
	UserID        string            `json:"user_id" firestore:"userId"`
	Type          NotificationType  `json:"type" firestore:"type"`
	Title         string            `json:"title" firestore:"title"`
	Message       string            `json:"message" firestore:"message"`
	IsRead        bool              `json:"is_read" firestore:"isRead"`
	ActionURL     string            `json:"action_url,omitempty" firestore:"actionUrl"`
	ReferenceID   string            `json:"reference_id,omitempty" firestore:"referenceId"`
	ReferenceType string            `json:"reference_type,omitempty" firestore:"referenceType"`
	Metadata      map[string]string `json:"metadata,omitempty" firestore:"metadata"`
	CreatedAt     time.Time         `json:"created_at" firestore:"createdAt"`
}

// NotificationPreferences controls which notification types a user receives
// and whether push delivery is enabled.
type NotificationPreferences struct {
	UserID        string `json:"user_id" firestore:"userId"`
	AnomalyAlerts bool   `json:"anomaly_alerts" firestore:"anomalyAlerts"`
	BillReminders bool   `json:"bill_reminders" firestore:"billReminders"`
	WeeklyDigest  bool   `json:"weekly_digest" firestore:"weeklyDigest"`
	PushEnabled   bool   `json:"push_enabled" firestore:"pushEnabled"`
	FCMToken      string `json:"fcm_token,omitempty" firestore:"fcmToken"`
}

// DefaultNotificationPreferences returns the preferences a new user starts
// with: in-app alerts on, push off until a token is registered.
func DefaultNotificationPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:        userID,
		AnomalyAlerts: true,
		BillReminders: true,
		WeeklyDigest:  false,
	}
}
