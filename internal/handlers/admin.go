package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/events"
	"github.com/givehope/donation-api/internal/validation"
)

// AdminHandler handles operator actions
type AdminHandler struct {
	emitter *events.Emitter
	log     *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(emitter *events.Emitter, log *zap.Logger) *AdminHandler {
	return &AdminHandler{emitter: emitter, log: log}
}

// RegisterRoutes registers admin routes on the given router.
// The router should already be behind auth middleware.
func (h *AdminHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/maintenance", h.AnnounceMaintenance).Methods("POST")
}

// MaintenanceRequest announces a maintenance window to all clients.
// DurationMS of 0 uses the default announcement duration.
type MaintenanceRequest struct {
	Message    string `json:"message" validate:"required,min=1,max=500"`
	DurationMS int64  `json:"duration_ms" validate:"gte=0"`
}

// AnnounceMaintenance publishes a system maintenance announcement
func (h *AdminHandler) AnnounceMaintenance(w http.ResponseWriter, r *http.Request) {
	var req MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: message is required")
		return
	}

	duration := time.Duration(req.DurationMS) * time.Millisecond
	if err := h.emitter.SystemMaintenance(r.Context(), validation.SanitizeText(req.Message), duration); err != nil {
		h.log.Error("failed_to_publish_maintenance", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to publish announcement")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{"announced": true})
}
