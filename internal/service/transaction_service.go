package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/model"
)

// CreateTransaction validates and stores a new ledger entry for the
// authenticated user. The caller never chooses the owner: the user ID always
// comes from the verified claims.
func (s *FinanceService) CreateTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	now := time.Now()
	txn.ID = uuid.New().String()
	txn.UserID = claims.UID
	if txn.AmountCents == 0 {
		txn.AmountCents = int64(txn.Amount*100 + 0.5)
	}
	txn.CreatedAt = now
	txn.UpdatedAt = now

	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return txn, nil
}

// GetTransaction returns a transaction the authenticated user owns.
func (s *FinanceService) GetTransaction(ctx context.Context, txnID string) (*model.Transaction, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := s.store.GetTransaction(ctx, txnID)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, txnID)
	}
	if txn.UserID != claims.UID {
		return nil, fmt.Errorf("%w: cannot access another user's resources", auth.ErrPermissionDenied)
	}

	return txn, nil
}

// UpdateTransaction replaces the mutable fields of an owned transaction.
func (s *FinanceService) UpdateTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetTransaction(ctx, txn.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, txn.ID)
	}
	if existing.UserID != claims.UID {
		return nil, fmt.Errorf("%w: cannot access another user's resources", auth.ErrPermissionDenied)
	}

	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	txn.UserID = existing.UserID
	txn.CreatedAt = existing.CreatedAt
	txn.UpdatedAt = time.Now()
	if txn.AmountCents == 0 {
		txn.AmountCents = int64(txn.Amount*100 + 0.5)
	}

	if err := s.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return txn, nil
}

// DeleteTransaction removes an owned transaction.
func (s *FinanceService) DeleteTransaction(ctx context.Context, txnID string) error {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return err
	}

	existing, err := s.store.GetTransaction(ctx, txnID)
	if err != nil {
		return fmt.Errorf("%w: transaction %s", ErrNotFound, txnID)
	}
	if existing.UserID != claims.UID {
		return fmt.Errorf("%w: cannot access another user's resources", auth.ErrPermissionDenied)
	}

	if err := s.store.DeleteTransaction(ctx, txnID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// ListTransactions lists the authenticated user's transactions, newest page
// tokens flowing through from the store.
func (s *FinanceService) ListTransactions(ctx context.Context, filter model.TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, "", err
	}

	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, "", fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidArgument, filter.Kind)
	}

	txns, nextToken, err := s.store.ListTransactions(ctx, claims.UID, filter, auth.NormalizePageSize(pageSize), pageToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nextToken, nil
}

func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction is required", ErrInvalidArgument)
	}
	if !txn.Kind.Valid() {
		return fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidArgument, txn.Kind)
	}
	if txn.Amount < 0 || math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
		return fmt.Errorf("%w: amount must be a non-negative finite number", ErrInvalidArgument)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}
	return nil
}

// fetchWindow pages through the user's transactions from start to now. The
// analytics core expects the full window in memory.
func (s *FinanceService) fetchWindow(ctx context.Context, userID string, start time.Time) ([]*model.Transaction, error) {
	filter := model.TransactionFilter{StartDate: &start}

	var all []*model.Transaction
	pageToken := ""
	for {
		txns, nextToken, err := s.store.ListTransactions(ctx, userID, filter, 1000, pageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions: %w", err)
		}
		all = append(all, txns...)
		if nextToken == "" {
			return all, nil
		}
		pageToken = nextToken
	}
}
