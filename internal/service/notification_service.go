package service

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/model"
)

// ListNotifications lists the authenticated user's notifications, optionally
// only unread ones.
func (s *FinanceService) ListNotifications(ctx context.Context, unreadOnly bool, pageSize int32, pageToken string) ([]*model.Notification, string, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, "", err
	}

	notifications, nextToken, err := s.store.ListNotifications(ctx, claims.UID, unreadOnly, auth.NormalizePageSize(pageSize), pageToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nextToken, nil
}

// MarkNotificationRead flags a notification as read.
func (s *FinanceService) MarkNotificationRead(ctx context.Context, notificationID string) error {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return err
	}
	if notificationID == "" {
		return fmt.Errorf("%w: notification_id is required", ErrInvalidArgument)
	}

	if err := s.store.MarkNotificationRead(ctx, notificationID); err != nil {
		return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
	}
	return nil
}

// GetNotificationPreferences returns the user's preferences, falling back to
// the defaults when none have been saved.
func (s *FinanceService) GetNotificationPreferences(ctx context.Context) (*model.NotificationPreferences, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.store.GetNotificationPreferences(ctx, claims.UID)
	if err != nil {
		return model.DefaultNotificationPreferences(claims.UID), nil
	}
	return prefs, nil
}

// UpdateNotificationPreferences replaces the user's preferences. The owner
// always comes from the verified claims.
func (s *FinanceService) UpdateNotificationPreferences(ctx context.Context, prefs *model.NotificationPreferences) (*model.NotificationPreferences, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, fmt.Errorf("%w: preferences are required", ErrInvalidArgument)
	}

	prefs.UserID = claims.UID
	if err := s.store.UpdateNotificationPreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to update notification preferences: %w", err)
	}
	return prefs, nil
}

// RegisterPushToken stores an FCM token and enables push delivery.
func (s *FinanceService) RegisterPushToken(ctx context.Context, token string) error {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("%w: fcm_token is required", ErrInvalidArgument)
	}

	prefs, err := s.store.GetNotificationPreferences(ctx, claims.UID)
	if err != nil {
		prefs = model.DefaultNotificationPreferences(claims.UID)
	}

	prefs.PushEnabled = true
	prefs.FCMToken = token

	if err := s.store.UpdateNotificationPreferences(ctx, prefs); err != nil {
		return fmt.Errorf("failed to update notification preferences: %w", err)
	}

	s.log.Info().Str("user_id", claims.UID).Msg("registered push token")
	return nil
}

// UnregisterPushToken clears the FCM token and disables push delivery.
func (s *FinanceService) UnregisterPushToken(ctx context.Context) error {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return err
	}

	prefs, err := s.store.GetNotificationPreferences(ctx, claims.UID)
	if err != nil {
		return nil
	}

	prefs.PushEnabled = false
	prefs.FCMToken = ""

	if err := s.store.UpdateNotificationPreferences(ctx, prefs); err != nil {
		return fmt.Errorf("failed to update notification preferences: %w", err)
	}

	s.log.Info().Str("user_id", claims.UID).Msg("unregistered push token")
	return nil
}

// SendPushNotification delivers a push via FCM if the user has push enabled.
// Fire-and-forget: errors are logged, never returned.
func (s *FinanceService) SendPushNotification(ctx context.Context, userID string, title, body, actionURL string) {
	if s.fcmClient == nil {
		return
	}

	prefs, err := s.store.GetNotificationPreferences(ctx, userID)
	if err != nil || !prefs.PushEnabled || prefs.FCMToken == "" {
		return
	}

	message := &messaging.Message{
		Token: prefs.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Webpush: &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{
				Link: actionURL,
			},
		},
	}

	if _, err := s.fcmClient.Send(ctx, message); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to send push notification")
	}
}
