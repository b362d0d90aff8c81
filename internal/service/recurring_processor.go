package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/model"
	"github.com/finsight-app/backend/internal/store"
)

// ProcessResult summarizes one scheduler run over all active rules.
type ProcessResult struct {
	ProcessedCount int32 `json:"processed_count"`
	SkippedCount   int32 `json:"skipped_count"`
	EndedCount     int32 `json:"ended_count"`
	ErrorCount     int32 `json:"error_count"`
}

// ProcessRecurringRules advances every active rule that has come due: rules
// past their end date are deactivated, auto-materializing rules get a ledger
// entry dated today, and next occurrences step forward one period from their
// previous value. Designed to be called by Cloud Scheduler without user
// authentication; the API layer gates it behind the scheduler secret.
//
// Each advancement is a conditional update keyed on the previous next
// occurrence, so two overlapping runs cannot double-materialize a rule: the
// loser of the race sees store.ErrConflict and counts the rule as skipped.
func (s *FinanceService) ProcessRecurringRules(ctx context.Context) (*ProcessResult, error) {
	now := time.Now()
	var result ProcessResult

	// Page through active rules across all users.
	pageToken := ""
	for {
		rules, nextToken, err := s.store.ListRecurringRules(ctx, "", true, 1000, pageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list recurring rules: %w", err)
		}

		actions := analytics.AdvanceDueRules(now, rules)
		result.SkippedCount += int32(len(rules) - len(actions))

		for _, action := range actions {
			if err := s.applyDueAction(ctx, action, now, &result); err != nil {
				s.log.Error().Err(err).
					Str("rule_id", action.Rule.ID).
					Str("user_id", action.Rule.UserID).
					Msg("failed to process recurring rule")
				result.ErrorCount++
			}
		}

		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	s.log.Info().
		Int32("processed", result.ProcessedCount).
		Int32("skipped", result.SkippedCount).
		Int32("ended", result.EndedCount).
		Int32("errors", result.ErrorCount).
		Msg("recurring rule processing completed")

	return &result, nil
}

// applyDueAction executes one planned advancement. Conflicts mean another run
// already advanced the rule; those count as skipped, not as errors.
func (s *FinanceService) applyDueAction(ctx context.Context, action analytics.DueAction, now time.Time, result *ProcessResult) error {
	rule := action.Rule

	if action.Deactivate {
		err := s.store.AdvanceRuleOccurrence(ctx, rule.ID, action.PrevNext, action.PrevNext, false)
		if errors.Is(err, store.ErrConflict) {
			result.SkippedCount++
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to deactivate rule: %w", err)
		}
		result.EndedCount++
		return nil
	}

	// Advance before materializing: if the conditional update loses a race
	// with a concurrent run, no ledger entry must be created.
	err := s.store.AdvanceRuleOccurrence(ctx, rule.ID, action.PrevNext, action.NewNext, true)
	if errors.Is(err, store.ErrConflict) {
		result.SkippedCount++
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to advance rule occurrence: %w", err)
	}

	if action.Materialize {
		if err := s.store.CreateTransaction(ctx, transactionFromRule(rule, now)); err != nil {
			return fmt.Errorf("failed to materialize transaction: %w", err)
		}
	}
	result.ProcessedCount++
	return nil
}

// transactionFromRule builds the ledger entry an auto-materializing rule
// produces when it comes due, dated the day of the run.
func transactionFromRule(rule *model.RecurringRule, asOf time.Time) *model.Transaction {
	now := time.Now()
	return &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      rule.UserID,
		Kind:        rule.Kind,
		Amount:      rule.Amount,
		AmountCents: rule.AmountCents,
		Category:    rule.Category,
		Merchant:    rule.Merchant,
		Date:        asOf,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        []string{"auto-recurring"},
	}
}
