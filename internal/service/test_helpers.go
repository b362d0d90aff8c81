package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/config"
	"github.com/finsight-app/backend/internal/store"
)

// newTestService builds a service with default analytics thresholds and a
// silent logger.
func newTestService(st store.Store) *FinanceService {
	return NewFinanceService(st, config.AnalyticsConfig{}, zerolog.Nop())
}

// testContextWithUser creates a context with authenticated user claims for testing
func testContextWithUser(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:   userID,
		Email: userID + "@test.local",
	})
}
