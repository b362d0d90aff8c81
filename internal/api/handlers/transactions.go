package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finsight-app/backend/internal/api/middleware"
	"github.com/finsight-app/backend/internal/model"
)

// CreateTransaction handles POST /api/transactions.
func (h *FinanceHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var txn model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.CreateTransaction(r.Context(), &txn)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// GetTransaction handles GET /api/transactions/{id}.
func (h *FinanceHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.svc.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, txn)
}

// UpdateTransaction handles PUT /api/transactions/{id}.
func (h *FinanceHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var txn model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	txn.ID = r.PathValue("id")

	updated, err := h.svc.UpdateTransaction(r.Context(), &txn)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *FinanceHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ListTransactions handles GET /api/transactions. Filters: start_date and
// end_date (RFC 3339 date), kind, category.
func (h *FinanceHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pageSize, pageToken := pagination(r)
	txns, nextToken, err := h.svc.ListTransactions(r.Context(), filter, pageSize, pageToken)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions":    txns,
		"next_page_token": nextToken,
	})
}

func parseTransactionFilter(r *http.Request) (model.TransactionFilter, error) {
	q := r.URL.Query()
	filter := model.TransactionFilter{
		Kind:     model.TransactionKind(q.Get("kind")),
		Category: q.Get("category"),
	}
	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	return filter, nil
}
