package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finsight-app/backend/internal/api/middleware"
	"github.com/finsight-app/backend/internal/model"
)

// ListNotifications handles GET /api/notifications?unread_only=true.
func (h *FinanceHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread_only") == "true"
	pageSize, pageToken := pagination(r)

	notifications, nextToken, err := h.svc.ListNotifications(r.Context(), unreadOnly, pageSize, pageToken)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications":   notifications,
		"next_page_token": nextToken,
	})
}

// MarkNotificationRead handles POST /api/notifications/{id}/read.
func (h *FinanceHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkNotificationRead(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"read": true})
}

// GetNotificationPreferences handles GET /api/notifications/preferences.
func (h *FinanceHandler) GetNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.svc.GetNotificationPreferences(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, prefs)
}

// UpdateNotificationPreferences handles PUT /api/notifications/preferences.
func (h *FinanceHandler) UpdateNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs model.NotificationPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.svc.UpdateNotificationPreferences(r.Context(), &prefs)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// GenerateWeeklyDigest handles POST /api/notifications/digest. Accepts either
// an authenticated user (digest for themselves) or the scheduler secret with
// an explicit user_id.
func (h *FinanceHandler) GenerateWeeklyDigest(w http.ResponseWriter, r *http.Request) {
	viaScheduler := h.schedulerAuthorized(r)
	userID := r.URL.Query().Get("user_id")

	result, err := h.svc.GenerateWeeklyDigest(r.Context(), userID, viaScheduler)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

// RegisterPushToken handles POST /api/push/register.
func (h *FinanceHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FCMToken string `json:"fcm_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.RegisterPushToken(r.Context(), req.FCMToken); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"registered": true})
}

// UnregisterPushToken handles POST /api/push/unregister.
func (h *FinanceHandler) UnregisterPushToken(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.UnregisterPushToken(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"unregistered": true})
}
