package handlers

import (
	"net/http"

	"github.com/finsight-app/backend/internal/api/middleware"
)

// GetSpendingPatterns handles GET /api/analytics/patterns.
func (h *FinanceHandler) GetSpendingPatterns(w http.ResponseWriter, r *http.Request) {
	aggregates, err := h.svc.GetSpendingPatterns(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"patterns": aggregates})
}

// DetectAnomalies handles GET /api/analytics/anomalies.
func (h *FinanceHandler) DetectAnomalies(w http.ResponseWriter, r *http.Request) {
	findings, err := h.svc.DetectAnomalies(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"anomalies": findings})
}

// GetCashFlowForecast handles GET /api/analytics/forecast?months=N.
func (h *FinanceHandler) GetCashFlowForecast(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 0)
	points, err := h.svc.GetCashFlowForecast(r.Context(), months)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"forecast": points})
}

// GetFinancialHealth handles GET /api/analytics/health.
func (h *FinanceHandler) GetFinancialHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.svc.GetFinancialHealth(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, health)
}

// GetAdvice handles GET /api/analytics/advice.
func (h *FinanceHandler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	advice, err := h.svc.GetAdvice(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"advice": advice})
}
