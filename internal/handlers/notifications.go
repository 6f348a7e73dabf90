package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/givehope/donation-api/internal/notify"
)

// NotificationHandler exposes the in-app notification center
type NotificationHandler struct {
	svc *notify.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(svc *notify.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// RegisterRoutes registers notification routes on the given router.
// The router should already have the /notifications prefix.
func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.List).Methods("GET")
	r.HandleFunc("", h.Clear).Methods("DELETE")
	r.HandleFunc("/toasts", h.Toasts).Methods("GET")
	r.HandleFunc("/read-all", h.MarkAllRead).Methods("POST")
	r.HandleFunc("/{id}/read", h.MarkRead).Methods("POST")
	r.HandleFunc("/{id}", h.Dismiss).Methods("DELETE")
}

// List returns the notification history, newest first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"notifications": h.svc.All(),
		"unread_count":  h.svc.UnreadCount(),
	})
}

// Toasts returns the notifications currently shown as toasts
func (h *NotificationHandler) Toasts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"toasts": h.svc.Toasts()})
}

// MarkRead marks a single notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if !h.svc.MarkRead(id) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Notification not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"read": true})
}

// MarkAllRead marks every notification as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.svc.MarkAllRead()
	respondJSON(w, http.StatusOK, map[string]any{"unread_count": 0})
}

// Dismiss removes a single notification. Dismissing an unknown ID is
// treated as already gone.
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	h.svc.Remove(id)
	respondJSON(w, http.StatusOK, map[string]any{"removed": true})
}

// Clear removes all notifications
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearAll()
	respondJSON(w, http.StatusOK, map[string]any{"notifications": []any{}})
}
