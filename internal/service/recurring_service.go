package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/model"
)

// DetectRecurringCandidates infers recurring (merchant, amount) patterns from
// the user's trailing six months of expenses. Candidates are suggestions; the
// user accepts them via CreateRecurringRule.
func (s *FinanceService) DetectRecurringCandidates(ctx context.Context) ([]analytics.RuleCandidate, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txns, err := s.fetchWindow(ctx, claims.UID, analytics.AddMonths(now, -forecastWindowMonths))
	if err != nil {
		return nil, err
	}

	return analytics.DetectRecurringCandidates(txns), nil
}

// CreateRecurringRule persists a recurring rule, typically from an accepted
// candidate. Auto-materialization stays off unless the user turns it on.
func (s *FinanceService) CreateRecurringRule(ctx context.Context, rule *model.RecurringRule) (*model.RecurringRule, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if rule == nil {
		return nil, fmt.Errorf("%w: rule is required", ErrInvalidArgument)
	}
	if !rule.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidArgument, rule.Frequency)
	}
	if rule.Kind == "" {
		rule.Kind = model.KindExpense
	}
	if !rule.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidArgument, rule.Kind)
	}
	if rule.NextOccurrence.IsZero() {
		return nil, fmt.Errorf("%w: next_occurrence is required", ErrInvalidArgument)
	}

	now := time.Now()
	rule.ID = uuid.New().String()
	rule.UserID = claims.UID
	rule.Active = true
	if rule.AmountCents == 0 {
		rule.AmountCents = int64(rule.Amount*100 + 0.5)
	}
	if rule.FirstSeen.IsZero() {
		rule.FirstSeen = now
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := s.store.CreateRecurringRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create recurring rule: %w", err)
	}

	return rule, nil
}

// ListRecurringRules lists the authenticated user's rules.
func (s *FinanceService) ListRecurringRules(ctx context.Context, activeOnly bool, pageSize int32, pageToken string) ([]*model.RecurringRule, string, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, "", err
	}

	rules, nextToken, err := s.store.ListRecurringRules(ctx, claims.UID, activeOnly, auth.NormalizePageSize(pageSize), pageToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list recurring rules: %w", err)
	}
	return rules, nextToken, nil
}

// UpdateRecurringRule replaces an owned rule's mutable fields.
func (s *FinanceService) UpdateRecurringRule(ctx context.Context, rule *model.RecurringRule) (*model.RecurringRule, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetRecurringRule(ctx, rule.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: recurring rule %s", ErrNotFound, rule.ID)
	}
	if existing.UserID != claims.UID {
		return nil, fmt.Errorf("%w: cannot access another user's resources", auth.ErrPermissionDenied)
	}

	if !rule.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidArgument, rule.Frequency)
	}

	rule.UserID = existing.UserID
	rule.FirstSeen = existing.FirstSeen
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now()

	if err := s.store.UpdateRecurringRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update recurring rule: %w", err)
	}
	return rule, nil
}

// DeleteRecurringRule removes an owned rule.
func (s *FinanceService) DeleteRecurringRule(ctx context.Context, ruleID string) error {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return err
	}

	existing, err := s.store.GetRecurringRule(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("%w: recurring rule %s", ErrNotFound, ruleID)
	}
	if existing.UserID != claims.UID {
		return fmt.Errorf("%w: cannot access another user's resources", auth.ErrPermissionDenied)
	}

	if err := s.store.DeleteRecurringRule(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to delete recurring rule: %w", err)
	}
	return nil
}
