package models

import (
	"time"

	"github.com/google/uuid"
)

// DonationStatus tracks a donation through its lifecycle.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusConfirmed DonationStatus = "confirmed"
	DonationStatusFailed    DonationStatus = "failed"
)

// Donation is one donation, fiat or crypto.
type Donation struct {
	ID          uuid.UUID      `json:"id"`
	CampaignID  *uuid.UUID     `json:"campaign_id,omitempty"`
	DonorName   string         `json:"donor_name"`
	DonorEmail  string         `json:"donor_email"`
	Amount      float64        `json:"amount"`
	Currency    string         `json:"currency"`
	Method      string         `json:"method"`
	Status      DonationStatus `json:"status"`
	TxReference *string        `json:"tx_reference,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
