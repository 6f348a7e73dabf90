package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Signal names a cross-component event. The seven signal names and their
// payload shapes are a versioned wire contract between unrelated parts of
// the system; do not rename them without versioning the contract.
type Signal string

const (
	SignalDonationSuccess     Signal = "donation:success"
	SignalDonationPending     Signal = "donation:pending"
	SignalDonationError       Signal = "donation:error"
	SignalBlockchainConfirmed Signal = "blockchain:confirmed"
	SignalBlockchainPending   Signal = "blockchain:pending"
	SignalCampaignGoalReached Signal = "campaign:goal-reached"
	SignalSystemMaintenance   Signal = "system:maintenance"
)

// Known reports whether s is part of the signal catalog.
func (s Signal) Known() bool {
	switch s {
	case SignalDonationSuccess, SignalDonationPending, SignalDonationError,
		SignalBlockchainConfirmed, SignalBlockchainPending,
		SignalCampaignGoalReached, SignalSystemMaintenance:
		return true
	}
	return false
}

// Event is the envelope carried by a Bus.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Signal    Signal          `json:"signal"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent wraps a payload in an envelope.
func NewEvent(signal Signal, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", signal, err)
	}
	return Event{
		ID:        uuid.New(),
		Signal:    signal,
		Payload:   raw,
		Timestamp: time.Now(),
	}, nil
}

// Bus carries events from producers to the notification bridge.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
}

// Payload shapes, one per signal. The validate tags are enforced at the
// bridge boundary; an event that fails validation is dropped, not rendered
// with missing fields.

// DonationSuccess is the payload for SignalDonationSuccess.
type DonationSuccess struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required"`
	Method   string  `json:"method" validate:"required"`
}

// DonationPending is the payload for SignalDonationPending.
type DonationPending struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required"`
}

// DonationError is the payload for SignalDonationError.
type DonationError struct {
	Message string `json:"message" validate:"required"`
}

// BlockchainConfirmed is the payload for SignalBlockchainConfirmed.
type BlockchainConfirmed struct {
	DonationID string  `json:"donation_id" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Currency   string  `json:"currency" validate:"required"`
}

// BlockchainPending is the payload for SignalBlockchainPending.
type BlockchainPending struct {
	Confirmations int `json:"confirmations" validate:"gte=0"`
	Required      int `json:"required" validate:"required,gt=0"`
}

// CampaignGoalReached is the payload for SignalCampaignGoalReached.
type CampaignGoalReached struct {
	CampaignName string `json:"campaign_name" validate:"required"`
}

// SystemMaintenance is the payload for SignalSystemMaintenance. Duration is
// how long the resulting warning stays on screen; zero means the bridge
// default applies.
type SystemMaintenance struct {
	Message  string        `json:"message" validate:"required"`
	Duration time.Duration `json:"duration,omitempty" validate:"gte=0"`
}
