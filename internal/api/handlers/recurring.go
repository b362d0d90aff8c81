package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finsight-app/backend/internal/api/middleware"
	"github.com/finsight-app/backend/internal/model"
)

// DetectRecurringCandidates handles GET /api/recurring/candidates.
func (h *FinanceHandler) DetectRecurringCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.svc.DetectRecurringCandidates(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"candidates": candidates})
}

// CreateRecurringRule handles POST /api/recurring.
func (h *FinanceHandler) CreateRecurringRule(w http.ResponseWriter, r *http.Request) {
	var rule model.RecurringRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.CreateRecurringRule(r.Context(), &rule)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// ListRecurringRules handles GET /api/recurring?active_only=true.
func (h *FinanceHandler) ListRecurringRules(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"
	pageSize, pageToken := pagination(r)

	rules, nextToken, err := h.svc.ListRecurringRules(r.Context(), activeOnly, pageSize, pageToken)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules":           rules,
		"next_page_token": nextToken,
	})
}

// UpdateRecurringRule handles PUT /api/recurring/{id}.
func (h *FinanceHandler) UpdateRecurringRule(w http.ResponseWriter, r *http.Request) {
	var rule model.RecurringRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rule.ID = r.PathValue("id")

	updated, err := h.svc.UpdateRecurringRule(r.Context(), &rule)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteRecurringRule handles DELETE /api/recurring/{id}.
func (h *FinanceHandler) DeleteRecurringRule(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRecurringRule(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ProcessRecurringRules handles POST /api/recurring/process. Scheduler-only:
// the caller must present the shared secret, user tokens are not accepted
// because the run spans every user's rules.
func (h *FinanceHandler) ProcessRecurringRules(w http.ResponseWriter, r *http.Request) {
	if !h.schedulerAuthorized(r) {
		middleware.WriteError(w, http.StatusUnauthorized, "valid X-Scheduler-Secret header required")
		return
	}

	result, err := h.svc.ProcessRecurringRules(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}
