package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/database"
	"github.com/givehope/donation-api/internal/validation"
)

// NewsletterHandler handles newsletter subscription requests
type NewsletterHandler struct {
	subscribers database.SubscriberRepositoryInterface
	log         *zap.Logger
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(subscribers database.SubscriberRepositoryInterface, log *zap.Logger) *NewsletterHandler {
	return &NewsletterHandler{subscribers: subscribers, log: log}
}

// RegisterRoutes registers newsletter routes on the given router.
// The router should already have the /newsletter prefix.
func (h *NewsletterHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/subscribe", h.Subscribe).Methods("POST")
	r.HandleFunc("/unsubscribe", h.Unsubscribe).Methods("POST")
}

// SubscribeRequest represents a newsletter subscribe/unsubscribe request
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Subscribe adds an email to the newsletter list. Subscribing twice is
// not an error.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "A valid email address is required")
		return
	}

	created, err := h.subscribers.Subscribe(r.Context(), req.Email)
	if err != nil {
		h.log.Error("failed_to_subscribe", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to subscribe")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]any{"subscribed": true})
}

// Unsubscribe removes an email from the newsletter list
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "A valid email address is required")
		return
	}

	if err := h.subscribers.Unsubscribe(r.Context(), req.Email); err != nil {
		h.log.Error("failed_to_unsubscribe", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to unsubscribe")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"subscribed": false})
}
