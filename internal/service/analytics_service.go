package service

import (
	"context"
	"time"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/model"
)

// GetSpendingPatterns aggregates the user's spending per category over the
// trailing six months.
func (s *FinanceService) GetSpendingPatterns(ctx context.Context) ([]analytics.CategoryAggregate, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txns, err := s.fetchWindow(ctx, claims.UID, analytics.AddMonths(now, -forecastWindowMonths))
	if err != nil {
		return nil, err
	}

	return analytics.AnalyzeSpendingPatterns(txns, now), nil
}

// DetectAnomalies runs the anomaly detector over the trailing three months
// and raises an in-app alert (plus optional push) for each new high-severity
// finding. Detection itself never fails on sparse data; only store errors
// surface.
func (s *FinanceService) DetectAnomalies(ctx context.Context) ([]analytics.Finding, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txns, err := s.fetchWindow(ctx, claims.UID, analytics.AddMonths(now, -analyticsWindowMonths))
	if err != nil {
		return nil, err
	}

	findings := analytics.DetectAnomalies(txns, s.anomalyConfig())

	trigger := NewNotificationTrigger(s.store, s.log)
	for _, f := range findings {
		trigger.AnomalyAlert(ctx, claims.UID, f)
		if f.Severity == analytics.SeverityHigh {
			go s.SendPushNotification(context.WithoutCancel(ctx), claims.UID, f.Title, f.Description, "/transactions/")
		}
	}

	return findings, nil
}

// GetCashFlowForecast projects income, expenses and savings for the coming
// months from the trailing six months of history.
func (s *FinanceService) GetCashFlowForecast(ctx context.Context, months int) ([]analytics.ForecastPoint, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if months <= 0 {
		months = s.forecastHorizon()
	}

	now := time.Now()
	txns, err := s.fetchWindow(ctx, claims.UID, analytics.AddMonths(now, -forecastWindowMonths))
	if err != nil {
		return nil, err
	}

	return analytics.ForecastCashFlow(txns, months, now), nil
}

// GetFinancialHealth scores the user's savings rate over the trailing three
// months of activity.
func (s *FinanceService) GetFinancialHealth(ctx context.Context) (analytics.HealthScore, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return analytics.HealthScore{}, err
	}

	now := time.Now()
	txns, err := s.fetchWindow(ctx, claims.UID, analytics.AddMonths(now, -analyticsWindowMonths))
	if err != nil {
		return analytics.HealthScore{}, err
	}

	income, expense := sumByKind(txns)
	return analytics.ScoreFinancialHealth(income, expense), nil
}

// GetAdvice assembles the rule-based advice feed from the health score,
// spending patterns and forecast.
func (s *FinanceService) GetAdvice(ctx context.Context) ([]analytics.Advice, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txns, err := s.fetchWindow(ctx, claims.UID, analytics.AddMonths(now, -forecastWindowMonths))
	if err != nil {
		return nil, err
	}

	income, expense := sumByKind(txns)
	health := analytics.ScoreFinancialHealth(income, expense)
	aggregates := analytics.AnalyzeSpendingPatterns(txns, now)
	forecast := analytics.ForecastCashFlow(txns, s.forecastHorizon(), now)

	return analytics.BuildAdvice(health, aggregates, forecast), nil
}

// sumByKind totals income and expense amounts, deriving dollars from cents
// where both are present so the two columns cannot disagree.
func sumByKind(txns []*model.Transaction) (income, expense float64) {
	for _, t := range txns {
		amount := t.Amount
		if t.AmountCents != 0 {
			amount = float64(t.AmountCents) / 100
		}
		switch t.Kind {
		case model.KindIncome:
			income += amount
		case model.KindExpense:
			expense += amount
		}
	}
	return income, expense
}
