package events

import (
	"context"
	"time"
)

// Emitter is the producer side of the bridge: typed helpers that wrap a
// payload in an envelope and publish it, so call sites never hand-build
// events.
type Emitter struct {
	bus Bus
}

// NewEmitter creates an emitter publishing to bus.
func NewEmitter(bus Bus) *Emitter {
	return &Emitter{bus: bus}
}

func (e *Emitter) emit(ctx context.Context, signal Signal, payload any) error {
	ev, err := NewEvent(signal, payload)
	if err != nil {
		return err
	}
	return e.bus.Publish(ctx, ev)
}

// DonationSucceeded raises SignalDonationSuccess.
func (e *Emitter) DonationSucceeded(ctx context.Context, amount float64, currency, method string) error {
	return e.emit(ctx, SignalDonationSuccess, DonationSuccess{Amount: amount, Currency: currency, Method: method})
}

// DonationPending raises SignalDonationPending.
func (e *Emitter) DonationPending(ctx context.Context, amount float64, currency string) error {
	return e.emit(ctx, SignalDonationPending, DonationPending{Amount: amount, Currency: currency})
}

// DonationFailed raises SignalDonationError.
func (e *Emitter) DonationFailed(ctx context.Context, message string) error {
	return e.emit(ctx, SignalDonationError, DonationError{Message: message})
}

// BlockchainConfirmed raises SignalBlockchainConfirmed.
func (e *Emitter) BlockchainConfirmed(ctx context.Context, donationID string, amount float64, currency string) error {
	return e.emit(ctx, SignalBlockchainConfirmed, BlockchainConfirmed{DonationID: donationID, Amount: amount, Currency: currency})
}

// BlockchainPending raises SignalBlockchainPending.
func (e *Emitter) BlockchainPending(ctx context.Context, confirmations, required int) error {
	return e.emit(ctx, SignalBlockchainPending, BlockchainPending{Confirmations: confirmations, Required: required})
}

// CampaignGoalReached raises SignalCampaignGoalReached.
func (e *Emitter) CampaignGoalReached(ctx context.Context, campaignName string) error {
	return e.emit(ctx, SignalCampaignGoalReached, CampaignGoalReached{CampaignName: campaignName})
}

// SystemMaintenance raises SignalSystemMaintenance.
func (e *Emitter) SystemMaintenance(ctx context.Context, message string, duration time.Duration) error {
	return e.emit(ctx, SignalSystemMaintenance, SystemMaintenance{Message: message, Duration: duration})
}
