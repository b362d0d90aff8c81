// Package handlers exposes the finance service over plain JSON HTTP. Each
// handler decodes the request, delegates to the service layer and maps its
// sentinel errors onto HTTP status codes.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/finsight-app/backend/internal/api/middleware"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/service"
)

// FinanceHandler routes HTTP requests to the finance service.
type FinanceHandler struct {
	svc             *service.FinanceService
	schedulerSecret string
	log             zerolog.Logger
}

// NewFinanceHandler creates a new finance handler. schedulerSecret guards the
// scheduler-only endpoints; when empty those endpoints reject every caller
// without user credentials.
func NewFinanceHandler(svc *service.FinanceService, schedulerSecret string, log zerolog.Logger) *FinanceHandler {
	return &FinanceHandler{
		svc:             svc,
		schedulerSecret: schedulerSecret,
		log:             log,
	}
}

// RegisterRoutes attaches every endpoint to mux.
func (h *FinanceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /api/transactions", h.CreateTransaction)
	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", h.GetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", h.UpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.DeleteTransaction)

	mux.HandleFunc("GET /api/analytics/patterns", h.GetSpendingPatterns)
	mux.HandleFunc("GET /api/analytics/anomalies", h.DetectAnomalies)
	mux.HandleFunc("GET /api/analytics/forecast", h.GetCashFlowForecast)
	mux.HandleFunc("GET /api/analytics/health", h.GetFinancialHealth)
	mux.HandleFunc("GET /api/analytics/advice", h.GetAdvice)

	mux.HandleFunc("GET /api/recurring/candidates", h.DetectRecurringCandidates)
	mux.HandleFunc("POST /api/recurring", h.CreateRecurringRule)
	mux.HandleFunc("GET /api/recurring", h.ListRecurringRules)
	mux.HandleFunc("PUT /api/recurring/{id}", h.UpdateRecurringRule)
	mux.HandleFunc("DELETE /api/recurring/{id}", h.DeleteRecurringRule)
	mux.HandleFunc("POST /api/recurring/process", h.ProcessRecurringRules)

	mux.HandleFunc("GET /api/notifications", h.ListNotifications)
	mux.HandleFunc("POST /api/notifications/{id}/read", h.MarkNotificationRead)
	mux.HandleFunc("GET /api/notifications/preferences", h.GetNotificationPreferences)
	mux.HandleFunc("PUT /api/notifications/preferences", h.UpdateNotificationPreferences)
	mux.HandleFunc("POST /api/notifications/digest", h.GenerateWeeklyDigest)

	mux.HandleFunc("POST /api/push/register", h.RegisterPushToken)
	mux.HandleFunc("POST /api/push/unregister", h.UnregisterPushToken)
}

// Health handles GET /health.
func (h *FinanceHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps the service layer's sentinel errors to HTTP status
// codes. Anything unrecognized is an internal error and gets logged with the
// request path; the client only ever sees the generic message.
func (h *FinanceHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		middleware.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrPermissionDenied):
		middleware.WriteError(w, http.StatusForbidden, "permission denied")
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// schedulerAuthorized reports whether the request carries the shared
// scheduler secret. An unset secret disables scheduler access entirely.
func (h *FinanceHandler) schedulerAuthorized(r *http.Request) bool {
	return h.schedulerSecret != "" && r.Header.Get("X-Scheduler-Secret") == h.schedulerSecret
}

// queryInt parses an integer query parameter, returning def when absent or
// malformed.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// pagination pulls the page_size/page_token pair every list endpoint shares.
func pagination(r *http.Request) (int32, string) {
	return int32(queryInt(r, "page_size", 0)), r.URL.Query().Get("page_token")
}
