package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/model"
	"github.com/finsight-app/backend/internal/store"
)

func optInToDigest(t *testing.T, st store.Store, userID string) {
	t.Helper()
	prefs := model.DefaultNotificationPreferences(userID)
	prefs.WeeklyDigest = true
	require.NoError(t, st.UpdateNotificationPreferences(context.Background(), prefs))
}

func TestGenerateWeeklyDigest(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := testContextWithUser("user-1")
	optInToDigest(t, st, "user-1")

	now := time.Now()
	seedTransactions(t, st, "user-1", []*model.Transaction{
		expenseOn(now.AddDate(0, 0, -2), 120, "groceries"),
		expenseOn(now.AddDate(0, 0, -4), 80, "transport"),
		incomeOn(now.AddDate(0, 0, -3), 1000),
		// Outside the seven-day window, must not count.
		expenseOn(now.AddDate(0, 0, -20), 999, "rent"),
	})

	result, err := svc.GenerateWeeklyDigest(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), result.UsersProcessed)
	assert.Equal(t, int32(1), result.DigestsSent)

	notifications, _, err := st.ListNotifications(ctx, "user-1", false, 100, "")
	require.NoError(t, err)

	var digest *model.Notification
	for _, n := range notifications {
		if n.Type == model.NotificationWeeklyDigest {
			digest = n
		}
	}
	require.NotNil(t, digest, "expected a weekly digest notification")
	assert.Equal(t, "Your Weekly Financial Summary", digest.Title)

	var data struct {
		TotalSpentCents  int64 `json:"total_spent_cents"`
		TotalIncomeCents int64 `json:"total_income_cents"`
		NetCents         int64 `json:"net_cents"`
	}
	require.NoError(t, json.Unmarshal([]byte(digest.Metadata["digest_data"]), &data))
	assert.Equal(t, int64(20000), data.TotalSpentCents)
	assert.Equal(t, int64(100000), data.TotalIncomeCents)
	assert.Equal(t, int64(80000), data.NetCents)
}

func TestGenerateWeeklyDigestNotOptedIn(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := testContextWithUser("user-1")

	result, err := svc.GenerateWeeklyDigest(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), result.UsersProcessed)
	assert.Equal(t, int32(0), result.DigestsSent)

	notifications, _, err := st.ListNotifications(ctx, "user-1", false, 100, "")
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestGenerateWeeklyDigestOtherUserDenied(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := testContextWithUser("user-1")

	_, err := svc.GenerateWeeklyDigest(ctx, "user-2", false)
	assert.ErrorIs(t, err, auth.ErrPermissionDenied)
}

func TestGenerateWeeklyDigestSchedulerMode(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	optInToDigest(t, st, "user-1")

	// Scheduler calls carry no user claims; the API layer validates the
	// shared secret before setting viaScheduler.
	result, err := svc.GenerateWeeklyDigest(context.Background(), "user-1", true)
	require.NoError(t, err)
	assert.Equal(t, int32(1), result.DigestsSent)
}

func TestGenerateWeeklyDigestCountsUpcomingBills(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := testContextWithUser("user-1")
	optInToDigest(t, st, "user-1")

	now := time.Now()
	require.NoError(t, st.CreateRecurringRule(ctx, &model.RecurringRule{
		ID:             "rule-1",
		UserID:         "user-1",
		Merchant:       "Netflix",
		Amount:         15.99,
		Kind:           model.KindExpense,
		Frequency:      model.FrequencyMonthly,
		NextOccurrence: now.AddDate(0, 0, 3),
		Active:         true,
	}))

	result, err := svc.GenerateWeeklyDigest(ctx, "", false)
	require.NoError(t, err)
	require.Equal(t, int32(1), result.DigestsSent)

	notifications, _, err := st.ListNotifications(ctx, "user-1", false, 100, "")
	require.NoError(t, err)

	var digest *model.Notification
	var reminders int
	for _, n := range notifications {
		switch n.Type {
		case model.NotificationWeeklyDigest:
			digest = n
		case model.NotificationBillReminder:
			reminders++
		}
	}
	require.NotNil(t, digest)

	var data struct {
		UpcomingBillsCount int32 `json:"upcoming_bills_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(digest.Metadata["digest_data"]), &data))
	assert.Equal(t, int32(1), data.UpcomingBillsCount)
	assert.Equal(t, 1, reminders, "an upcoming bill should produce a reminder")
}
