package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/model"
	"github.com/finsight-app/backend/internal/store"
)

func activeRule(id, userID string, next time.Time) *model.RecurringRule {
	return &model.RecurringRule{
		ID:             id,
		UserID:         userID,
		Merchant:       "Netflix",
		Amount:         15.99,
		AmountCents:    1599,
		Category:       "entertainment",
		Kind:           model.KindExpense,
		Frequency:      model.FrequencyMonthly,
		NextOccurrence: next,
		Active:         true,
	}
}

func TestProcessRecurringRules(t *testing.T) {
	ctx := context.Background()

	t.Run("skips rules not yet due", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		rule := activeRule("r1", "user-1", time.Now().Add(48*time.Hour))
		mockStore.EXPECT().
			ListRecurringRules(gomock.Any(), "", true, int32(1000), "").
			Return([]*model.RecurringRule{rule}, "", nil)

		result, err := svc.ProcessRecurringRules(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SkippedCount != 1 || result.ProcessedCount != 0 {
			t.Errorf("expected 1 skipped, 0 processed, got %+v", result)
		}
	})

	t.Run("advances a due rule without materializing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		prev := time.Now().Add(-24 * time.Hour)
		rule := activeRule("r1", "user-1", prev)
		newNext := analytics.NextOccurrence(prev, model.FrequencyMonthly)

		mockStore.EXPECT().
			ListRecurringRules(gomock.Any(), "", true, int32(1000), "").
			Return([]*model.RecurringRule{rule}, "", nil)
		mockStore.EXPECT().
			AdvanceRuleOccurrence(gomock.Any(), "r1", prev, newNext, true).
			Return(nil)

		result, err := svc.ProcessRecurringRules(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ProcessedCount != 1 || result.SkippedCount != 0 || result.ErrorCount != 0 {
			t.Errorf("expected 1 processed, got %+v", result)
		}
	})

	t.Run("materializes a ledger entry for auto-materializing rules", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		prev := time.Now().Add(-24 * time.Hour)
		rule := activeRule("r1", "user-1", prev)
		rule.AutoMaterialize = true
		newNext := analytics.NextOccurrence(prev, model.FrequencyMonthly)

		mockStore.EXPECT().
			ListRecurringRules(gomock.Any(), "", true, int32(1000), "").
			Return([]*model.RecurringRule{rule}, "", nil)
		mockStore.EXPECT().
			AdvanceRuleOccurrence(gomock.Any(), "r1", prev, newNext, true).
			Return(nil)
		mockStore.EXPECT().
			CreateTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txn *model.Transaction) error {
				if txn.UserID != "user-1" {
					t.Errorf("expected owner user-1, got %s", txn.UserID)
				}
				if txn.Merchant != "Netflix" || txn.AmountCents != 1599 {
					t.Errorf("unexpected materialized transaction: %+v", txn)
				}
				if len(txn.Tags) != 1 || txn.Tags[0] != "auto-recurring" {
					t.Errorf("expected auto-recurring tag, got %v", txn.Tags)
				}
				return nil
			})

		result, err := svc.ProcessRecurringRules(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ProcessedCount != 1 {
			t.Errorf("expected 1 processed, got %+v", result)
		}
	})

	t.Run("deactivates rules past their end date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		prev := time.Now().Add(-24 * time.Hour)
		end := time.Now().Add(-72 * time.Hour)
		rule := activeRule("r1", "user-1", prev)
		rule.EndDate = &end

		mockStore.EXPECT().
			ListRecurringRules(gomock.Any(), "", true, int32(1000), "").
			Return([]*model.RecurringRule{rule}, "", nil)
		mockStore.EXPECT().
			AdvanceRuleOccurrence(gomock.Any(), "r1", prev, prev, false).
			Return(nil)

		result, err := svc.ProcessRecurringRules(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.EndedCount != 1 || result.ProcessedCount != 0 {
			t.Errorf("expected 1 ended, got %+v", result)
		}
	})

	t.Run("counts a lost conditional update as skipped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		prev := time.Now().Add(-24 * time.Hour)
		rule := activeRule("r1", "user-1", prev)
		newNext := analytics.NextOccurrence(prev, model.FrequencyMonthly)

		mockStore.EXPECT().
			ListRecurringRules(gomock.Any(), "", true, int32(1000), "").
			Return([]*model.RecurringRule{rule}, "", nil)
		mockStore.EXPECT().
			AdvanceRuleOccurrence(gomock.Any(), "r1", prev, newNext, true).
			Return(store.ErrConflict)

		result, err := svc.ProcessRecurringRules(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SkippedCount != 1 || result.ErrorCount != 0 || result.ProcessedCount != 0 {
			t.Errorf("expected conflict counted as skipped, got %+v", result)
		}
	})

	t.Run("counts store failures as errors and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		prev := time.Now().Add(-24 * time.Hour)
		broken := activeRule("r1", "user-1", prev)
		healthy := activeRule("r2", "user-2", prev)
		newNext := analytics.NextOccurrence(prev, model.FrequencyMonthly)

		mockStore.EXPECT().
			ListRecurringRules(gomock.Any(), "", true, int32(1000), "").
			Return([]*model.RecurringRule{broken, healthy}, "", nil)
		mockStore.EXPECT().
			AdvanceRuleOccurrence(gomock.Any(), "r1", prev, newNext, true).
			Return(errors.New("firestore unavailable"))
		mockStore.EXPECT().
			AdvanceRuleOccurrence(gomock.Any(), "r2", prev, newNext, true).
			Return(nil)

		result, err := svc.ProcessRecurringRules(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ErrorCount != 1 || result.ProcessedCount != 1 {
			t.Errorf("expected 1 error and 1 processed, got %+v", result)
		}
	})

	t.Run("pages through all active rules", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		future := time.Now().Add(48 * time.Hour)
		mockStore.EXPECT().
			ListRecurringRules(gomock.Any(), "", true, int32(1000), "").
			Return([]*model.RecurringRule{activeRule("r1", "u1", future)}, "tok", nil)
		mockStore.EXPECT().
			ListRecurringRules(gomock.Any(), "", true, int32(1000), "tok").
			Return([]*model.RecurringRule{activeRule("r2", "u2", future)}, "", nil)

		result, err := svc.ProcessRecurringRules(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SkippedCount != 2 {
			t.Errorf("expected 2 skipped across pages, got %+v", result)
		}
	})
}
