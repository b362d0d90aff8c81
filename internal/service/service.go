// Package service implements the application logic between the HTTP API and
// the store: ownership enforcement, analytics orchestration, recurring-rule
// processing and notification delivery.
package service

import (
	"errors"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/config"
	"github.com/finsight-app/backend/internal/store"
)

// ErrInvalidArgument marks client errors: malformed dates, bad amounts,
// unknown kinds. The API layer maps it to 400.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound marks lookups that hit nothing. Mapped to 404.
var ErrNotFound = errors.New("not found")

// analyticsWindowMonths is how far back transactions are fetched for the
// analytics endpoints. Three months keeps the anomaly baseline seasonal
// enough without dragging in stale spending habits.
const analyticsWindowMonths = 3

// forecastWindowMonths is the history window for forecasting and patterns,
// matching the pattern analyzer's six trend buckets.
const forecastWindowMonths = 6

// FinanceService carries the application logic. The FCM client is optional;
// without it push delivery is silently disabled.
type FinanceService struct {
	store     store.Store
	fcmClient *messaging.Client
	cfg       config.AnalyticsConfig
	log       zerolog.Logger
}

// NewFinanceService creates a new FinanceService.
func NewFinanceService(st store.Store, cfg config.AnalyticsConfig, log zerolog.Logger) *FinanceService {
	return &FinanceService{
		store: st,
		cfg:   cfg,
		log:   log,
	}
}

// SetFCMClient sets the Firebase Cloud Messaging client for push notifications.
func (s *FinanceService) SetFCMClient(client *messaging.Client) {
	s.fcmClient = client
}

// anomalyConfig translates the tunable server configuration into the
// detector's thresholds, falling back to the defaults for unset values.
func (s *FinanceService) anomalyConfig() analytics.AnomalyConfig {
	cfg := analytics.DefaultAnomalyConfig()
	if s.cfg.SpikeSigma > 0 {
		cfg.SpikeSigma = s.cfg.SpikeSigma
	}
	if s.cfg.SimilarityTolerance > 0 {
		cfg.SimilarityTolerance = s.cfg.SimilarityTolerance
	}
	if s.cfg.DuplicateWindowMinutes > 0 {
		cfg.DuplicateWindow = time.Duration(s.cfg.DuplicateWindowMinutes) * time.Minute
	}
	return cfg
}

// forecastHorizon returns the configured forecast horizon in months.
func (s *FinanceService) forecastHorizon() int {
	if s.cfg.ForecastHorizonMonths > 0 {
		return s.cfg.ForecastHorizonMonths
	}
	return analytics.DefaultForecastHorizon
}
