package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/database"
	"github.com/givehope/donation-api/internal/models"
	"github.com/givehope/donation-api/internal/validation"
)

// ContactHandler handles contact form requests
type ContactHandler struct {
	messages database.ContactRepositoryInterface
	log      *zap.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(messages database.ContactRepositoryInterface, log *zap.Logger) *ContactHandler {
	return &ContactHandler{messages: messages, log: log}
}

// RegisterRoutes registers contact routes on the given router.
// The router should already have the /contact prefix.
func (h *ContactHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.SubmitMessage).Methods("POST")
}

// RegisterAdminRoutes registers the authenticated listing route.
func (h *ContactHandler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/contact", h.ListRecent).Methods("GET")
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=1,max=300"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// SubmitMessage stores a contact form submission
func (h *ContactHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", validationErrors[0].Error()))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	msg := &models.ContactMessage{
		ID:      uuid.New(),
		Name:    validation.SanitizeText(req.Name),
		Email:   req.Email,
		Subject: validation.SanitizeText(req.Subject),
		Message: validation.SanitizeText(req.Message),
	}

	if err := h.messages.Create(r.Context(), msg); err != nil {
		h.log.Error("failed_to_store_contact_message", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to submit message")
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}

// ListRecent lists the most recent contact messages
func (h *ContactHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	messages, err := h.messages.ListRecent(r.Context(), limit)
	if err != nil {
		h.log.Error("failed_to_list_contact_messages", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve messages")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
