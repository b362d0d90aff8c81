package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/model"
)

// DigestResult summarizes one digest generation call.
type DigestResult struct {
	UsersProcessed int32 `json:"users_processed"`
	DigestsSent    int32 `json:"digests_sent"`
}

// digestData is the structured weekly summary stored in the notification
// metadata so the client can render it without re-parsing the message text.
type digestData struct {
	TotalSpentCents    int64            `json:"total_spent_cents"`
	TotalIncomeCents   int64            `json:"total_income_cents"`
	NetCents           int64            `json:"net_cents"`
	TopCategories      []categoryAmount `json:"top_categories,omitempty"`
	UpcomingBillsCount int32            `json:"upcoming_bills_count"`
	PeriodStart        string           `json:"period_start"`
	PeriodEnd          string           `json:"period_end"`
}

type categoryAmount struct {
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
}

// GenerateWeeklyDigest creates a weekly summary notification for users who
// opted in. With a user ID it runs for that single user; callers acting on
// behalf of the scheduler (validated by the API layer) pass viaScheduler so
// no user token is required.
func (s *FinanceService) GenerateWeeklyDigest(ctx context.Context, userID string, viaScheduler bool) (*DigestResult, error) {
	if !viaScheduler {
		claims, err := auth.RequireAuth(ctx)
		if err != nil {
			return nil, err
		}
		if userID != "" && userID != claims.UID {
			return nil, fmt.Errorf("%w: cannot generate digest for another user", auth.ErrPermissionDenied)
		}
		userID = claims.UID
	}

	now := time.Now()
	periodStart := now.AddDate(0, 0, -7)

	var result DigestResult
	if userID == "" {
		// Scheduler mode with no user: nothing to enumerate. Firestore has no
		// cheap "all users with weekly_digest=true" index yet, so the
		// scheduler job fans out per user.
		s.log.Warn().Msg("weekly digest scheduler invocation without user id processed 0 users")
		return &result, nil
	}

	sent, err := s.generateDigestForUser(ctx, userID, periodStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest for user %s: %w", userID, err)
	}
	result.UsersProcessed = 1
	if sent {
		result.DigestsSent = 1
	}
	return &result, nil
}

// generateDigestForUser builds the digest and creates the notification for
// one user. Returns false without error when the user has not opted in.
func (s *FinanceService) generateDigestForUser(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	prefs, err := s.store.GetNotificationPreferences(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get notification preferences: %w", err)
	}
	if !prefs.WeeklyDigest {
		return false, nil
	}

	filter := model.TransactionFilter{StartDate: &start, EndDate: &end}
	txns, _, err := s.store.ListTransactions(ctx, userID, filter, 1000, "")
	if err != nil {
		return false, fmt.Errorf("failed to list transactions: %w", err)
	}

	var totalSpentCents, totalIncomeCents int64
	categoryTotals := make(map[string]int64)
	for _, t := range txns {
		cents := t.AmountCents
		if cents == 0 {
			cents = int64(t.Amount*100 + 0.5)
		}
		switch t.Kind {
		case model.KindExpense:
			totalSpentCents += cents
			categoryTotals[t.Category] += cents
		case model.KindIncome:
			totalIncomeCents += cents
		}
	}

	topCategories := make([]categoryAmount, 0, len(categoryTotals))
	for cat, cents := range categoryTotals {
		topCategories = append(topCategories, categoryAmount{Category: cat, AmountCents: cents})
	}
	sort.Slice(topCategories, func(i, j int) bool {
		if topCategories[i].AmountCents != topCategories[j].AmountCents {
			return topCategories[i].AmountCents > topCategories[j].AmountCents
		}
		return topCategories[i].Category < topCategories[j].Category
	})
	if len(topCategories) > 5 {
		topCategories = topCategories[:5]
	}

	// Count active rules coming due in the next week, and nudge the user
	// about each one.
	var upcomingBillsCount int32
	weekAhead := end.AddDate(0, 0, 7)
	rules, _, err := s.store.ListRecurringRules(ctx, userID, true, 100, "")
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to list recurring rules for digest")
	}
	trigger := NewNotificationTrigger(s.store, s.log)
	for _, rule := range rules {
		if rule.NextOccurrence.After(end) && rule.NextOccurrence.Before(weekAhead) {
			upcomingBillsCount++
			trigger.BillReminder(ctx, userID, rule)
		}
	}

	digest := digestData{
		TotalSpentCents:    totalSpentCents,
		TotalIncomeCents:   totalIncomeCents,
		NetCents:           totalIncomeCents - totalSpentCents,
		TopCategories:      topCategories,
		UpcomingBillsCount: upcomingBillsCount,
		PeriodStart:        start.Format("2006-01-02"),
		PeriodEnd:          end.Format("2006-01-02"),
	}
	digestJSON, err := json.Marshal(digest)
	if err != nil {
		return false, fmt.Errorf("failed to serialize digest data: %w", err)
	}

	notification := &model.Notification{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          model.NotificationWeeklyDigest,
		Title:         "Your Weekly Financial Summary",
		Message:       fmt.Sprintf("You spent $%.2f and earned $%.2f this week.", float64(totalSpentCents)/100, float64(totalIncomeCents)/100),
		ActionURL:     "/notifications/",
		ReferenceType: "weekly_digest",
		Metadata:      map[string]string{"digest_data": string(digestJSON)},
	}

	if err := s.store.CreateNotification(ctx, notification); err != nil {
		return false, fmt.Errorf("failed to create digest notification: %w", err)
	}
	return true, nil
}
