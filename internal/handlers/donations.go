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
	"github.com/givehope/donation-api/internal/events"
	"github.com/givehope/donation-api/internal/models"
	"github.com/givehope/donation-api/internal/validation"
)

// DonationHandler handles donation-related requests
type DonationHandler struct {
	donations database.DonationRepositoryInterface
	campaigns database.CampaignRepositoryInterface
	emitter   *events.Emitter
	log       *zap.Logger
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donations database.DonationRepositoryInterface, campaigns database.CampaignRepositoryInterface, emitter *events.Emitter, log *zap.Logger) *DonationHandler {
	return &DonationHandler{
		donations: donations,
		campaigns: campaigns,
		emitter:   emitter,
		log:       log,
	}
}

// RegisterRoutes registers donation routes on the given router.
// The router should already have the /donations prefix.
func (h *DonationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListDonations).Methods("GET")
	r.HandleFunc("", h.CreateDonation).Methods("POST")
	r.HandleFunc("/totals", h.Totals).Methods("GET")
	r.HandleFunc("/{id}", h.GetDonation).Methods("GET")
	r.HandleFunc("/{id}/confirm", h.ConfirmDonation).Methods("POST")
	r.HandleFunc("/{id}/fail", h.FailDonation).Methods("POST")
}

// RegisterConfirmationRoutes registers the blockchain webhook separately
// so it can sit behind its own rate limit.
func (h *DonationHandler) RegisterConfirmationRoutes(r *mux.Router) {
	r.HandleFunc("/{id}/confirmations", h.RecordConfirmations).Methods("POST")
}

const (
	// DefaultPageSize is the default page size for pagination
	DefaultPageSize = 50
	// MaxPageSize is the maximum page size for pagination
	MaxPageSize = 200
)

// CreateDonationRequest represents a create donation request
type CreateDonationRequest struct {
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"`
	DonorName  string     `json:"donor_name" validate:"required,min=1,max=200"`
	DonorEmail string     `json:"donor_email" validate:"required,email"`
	Amount     float64    `json:"amount" validate:"required,gt=0"`
	Currency   string     `json:"currency" validate:"required,currency"`
	Method     string     `json:"method" validate:"required,oneof=card paypal crypto bank"`
}

// ConfirmDonationRequest carries the payment processor's reference.
type ConfirmDonationRequest struct {
	TxReference *string `json:"tx_reference,omitempty"`
}

// FailDonationRequest carries the failure reason shown to the donor.
type FailDonationRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// ConfirmationsRequest is the blockchain watcher's progress report.
type ConfirmationsRequest struct {
	Confirmations int     `json:"confirmations" validate:"gte=0"`
	Required      int     `json:"required" validate:"required,gt=0"`
	TxReference   *string `json:"tx_reference,omitempty"`
}

// ListDonationsResponse represents the paginated response for listing donations
type ListDonationsResponse struct {
	Donations  []*models.Donation `json:"donations"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

// ListDonations lists donations with pagination and optional status filter
func (h *DonationHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize := DefaultPageSize
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 {
			if parsed > MaxPageSize {
				pageSize = MaxPageSize
			} else {
				pageSize = parsed
			}
		}
	}

	var status *models.DonationStatus
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateDonationStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		sEnum := models.DonationStatus(s)
		status = &sEnum
	}

	donations, total, err := h.donations.ListPaginated(ctx, status, page, pageSize)
	if err != nil {
		h.log.Error("failed_to_list_donations", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve donations")
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	respondJSON(w, http.StatusOK, ListDonationsResponse{
		Donations:  donations,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	})
}

// CreateDonation records a new pending donation and announces it
func (h *DonationHandler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
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

	req.DonorName = validation.SanitizeText(req.DonorName)

	if req.CampaignID != nil {
		campaign, err := h.campaigns.GetByID(ctx, *req.CampaignID)
		if err != nil {
			h.log.Error("failed_to_load_campaign", zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load campaign")
			return
		}
		if campaign == nil {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Campaign not found")
			return
		}
	}

	donation := &models.Donation{
		ID:         uuid.New(),
		CampaignID: req.CampaignID,
		DonorName:  req.DonorName,
		DonorEmail: req.DonorEmail,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Method:     req.Method,
		Status:     models.DonationStatusPending,
	}

	if err := h.donations.Create(ctx, donation); err != nil {
		h.log.Error("failed_to_create_donation", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create donation")
		return
	}

	if err := h.emitter.DonationPending(ctx, donation.Amount, donation.Currency); err != nil {
		h.log.Warn("failed_to_publish_donation_pending", zap.Error(err))
	}

	respondJSON(w, http.StatusCreated, donation)
}

// GetDonation retrieves a single donation by ID
func (h *DonationHandler) GetDonation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	donation, err := h.donations.GetByID(r.Context(), id)
	if err != nil {
		h.log.Error("failed_to_get_donation", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve donation")
		return
	}
	if donation == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Donation not found")
		return
	}

	respondJSON(w, http.StatusOK, donation)
}

// ConfirmDonation marks a donation confirmed, credits its campaign and
// announces the success
func (h *DonationHandler) ConfirmDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req ConfirmDonationRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
			return
		}
	}

	donation, err := h.donations.GetByID(ctx, id)
	if err != nil {
		h.log.Error("failed_to_get_donation", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve donation")
		return
	}
	if donation == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Donation not found")
		return
	}
	if donation.Status == models.DonationStatusConfirmed {
		respondJSON(w, http.StatusOK, donation)
		return
	}
	if donation.Status == models.DonationStatusFailed {
		respondJSONError(w, http.StatusConflict, "Conflict", "Donation already failed")
		return
	}

	donation, err = h.donations.UpdateStatus(ctx, id, models.DonationStatusConfirmed, req.TxReference)
	if err != nil {
		h.log.Error("failed_to_confirm_donation", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to confirm donation")
		return
	}

	if err := h.emitter.DonationSucceeded(ctx, donation.Amount, donation.Currency, donation.Method); err != nil {
		h.log.Warn("failed_to_publish_donation_success", zap.Error(err))
	}

	h.creditCampaign(r, donation)

	respondJSON(w, http.StatusOK, donation)
}

// creditCampaign adds a confirmed donation to its campaign total and
// announces the goal if this donation crossed it.
func (h *DonationHandler) creditCampaign(r *http.Request, donation *models.Donation) {
	if donation.CampaignID == nil {
		return
	}
	ctx := r.Context()

	campaign, err := h.campaigns.AddToRaised(ctx, *donation.CampaignID, donation.Amount)
	if err != nil {
		h.log.Error("failed_to_credit_campaign",
			zap.Error(err),
			zap.String("campaign_id", donation.CampaignID.String()),
		)
		return
	}
	if campaign == nil {
		return
	}

	// Announce only when this donation crossed the goal line
	if campaign.GoalReached() && campaign.Raised-donation.Amount < campaign.Goal {
		if err := h.emitter.CampaignGoalReached(ctx, campaign.Name); err != nil {
			h.log.Warn("failed_to_publish_goal_reached", zap.Error(err))
		}
	}
}

// FailDonation marks a donation failed and announces the failure
func (h *DonationHandler) FailDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req FailDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: reason is required")
		return
	}

	donation, err := h.donations.GetByID(ctx, id)
	if err != nil {
		h.log.Error("failed_to_get_donation", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve donation")
		return
	}
	if donation == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Donation not found")
		return
	}
	if donation.Status == models.DonationStatusConfirmed {
		respondJSONError(w, http.StatusConflict, "Conflict", "Donation already confirmed")
		return
	}

	donation, err = h.donations.UpdateStatus(ctx, id, models.DonationStatusFailed, nil)
	if err != nil {
		h.log.Error("failed_to_fail_donation", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update donation")
		return
	}

	if err := h.emitter.DonationFailed(ctx, validation.SanitizeText(req.Reason)); err != nil {
		h.log.Warn("failed_to_publish_donation_failed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, donation)
}

// RecordConfirmations ingests a blockchain watcher progress report for a
// crypto donation. Once the required confirmation count is reached the
// donation is confirmed.
func (h *DonationHandler) RecordConfirmations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req ConfirmationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: required confirmation count must be positive")
		return
	}

	donation, err := h.donations.GetByID(ctx, id)
	if err != nil {
		h.log.Error("failed_to_get_donation", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve donation")
		return
	}
	if donation == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Donation not found")
		return
	}

	if req.Confirmations < req.Required {
		if err := h.emitter.BlockchainPending(ctx, req.Confirmations, req.Required); err != nil {
			h.log.Warn("failed_to_publish_blockchain_pending", zap.Error(err))
		}
		respondJSON(w, http.StatusAccepted, donation)
		return
	}

	if donation.Status != models.DonationStatusConfirmed {
		donation, err = h.donations.UpdateStatus(ctx, id, models.DonationStatusConfirmed, req.TxReference)
		if err != nil {
			h.log.Error("failed_to_confirm_donation", zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to confirm donation")
			return
		}
		h.creditCampaign(r, donation)
	}

	if err := h.emitter.BlockchainConfirmed(ctx, donation.ID.String(), donation.Amount, donation.Currency); err != nil {
		h.log.Warn("failed_to_publish_blockchain_confirmed", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, donation)
}

// Totals reports the confirmed donation sum per currency
func (h *DonationHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.donations.SumConfirmed(r.Context())
	if err != nil {
		h.log.Error("failed_to_sum_donations", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute totals")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"totals": totals})
}

// parseIDParam extracts and parses the {id} route variable
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
