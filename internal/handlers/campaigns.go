package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/database"
	"github.com/givehope/donation-api/internal/models"
	"github.com/givehope/donation-api/internal/validation"
)

// CampaignHandler handles campaign-related requests
type CampaignHandler struct {
	campaigns database.CampaignRepositoryInterface
	log       *zap.Logger
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaigns database.CampaignRepositoryInterface, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, log: log}
}

// RegisterRoutes registers campaign routes on the given router.
// The router should already have the /campaigns prefix.
func (h *CampaignHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCampaigns).Methods("GET")
	r.HandleFunc("", h.CreateCampaign).Methods("POST")
	r.HandleFunc("/{id}", h.GetCampaign).Methods("GET")
}

// CreateCampaignRequest represents a create campaign request
type CreateCampaignRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Currency    string  `json:"currency" validate:"required,currency"`
	Goal        float64 `json:"goal" validate:"required,gt=0"`
}

// ListCampaigns lists all campaigns
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List(r.Context())
	if err != nil {
		h.log.Error("failed_to_list_campaigns", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve campaigns")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

// CreateCampaign creates a new campaign
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
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

	campaign := &models.Campaign{
		ID:          uuid.New(),
		Name:        validation.SanitizeText(req.Name),
		Description: validation.SanitizeText(req.Description),
		Currency:    req.Currency,
		Goal:        req.Goal,
	}

	if err := h.campaigns.Create(r.Context(), campaign); err != nil {
		h.log.Error("failed_to_create_campaign", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create campaign")
		return
	}

	respondJSON(w, http.StatusCreated, campaign)
}

// GetCampaign retrieves a single campaign by ID
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	campaign, err := h.campaigns.GetByID(r.Context(), id)
	if err != nil {
		h.log.Error("failed_to_get_campaign", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve campaign")
		return
	}
	if campaign == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Campaign not found")
		return
	}

	respondJSON(w, http.StatusOK, campaign)
}
