package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/notify"
)

// Display durations per signal. Errors stay until dismissed.
const (
	donationSuccessDuration     = 7 * time.Second
	donationPendingDuration     = 10 * time.Second
	blockchainConfirmedDuration = 8 * time.Second
	blockchainPendingDuration   = 5 * time.Second
	goalReachedDuration         = 10 * time.Second
	maintenanceDefaultDuration  = 15 * time.Second
)

// Bridge is the consumer side of the event system: it decodes and validates
// each event's payload and translates it into a user-facing notification.
// Events with unknown signals or invalid payloads are dropped and logged
// rather than rendered with missing fields.
type Bridge struct {
	notifier *notify.Service
	validate *validator.Validate
	log      *zap.Logger
}

// NewBridge creates a bridge feeding notifier.
func NewBridge(notifier *notify.Service, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Handle translates one event into a notification. The returned error means
// the event was dropped; the bus decides whether to dead-letter it.
func (b *Bridge) Handle(ev Event) error {
	n, err := b.render(ev)
	if err != nil {
		b.log.Warn("event_dropped",
			zap.String("signal", string(ev.Signal)),
			zap.String("event_id", ev.ID.String()),
			zap.Error(err),
		)
		return err
	}
	b.notifier.Push(n)
	return nil
}

func (b *Bridge) render(ev Event) (notify.Notification, error) {
	switch ev.Signal {
	case SignalDonationSuccess:
		var p DonationSuccess
		if err := b.decode(ev, &p); err != nil {
			return notify.Notification{}, err
		}
		msg := fmt.Sprintf("Thank you! Your donation of %s %s via %s has been received.",
			formatAmount(p.Amount), p.Currency, p.Method)
		return notify.New(notify.TypeSuccess, "Donation Successful!", msg).
			WithDuration(donationSuccessDuration), nil

	case SignalDonationPending:
		var p DonationPending
		if err := b.decode(ev, &p); err != nil {
			return notify.Notification{}, err
		}
		msg := fmt.Sprintf("Your donation of %s %s is being processed.",
			formatAmount(p.Amount), p.Currency)
		return notify.New(notify.TypeInfo, "Donation Pending", msg).
			WithDuration(donationPendingDuration), nil

	case SignalDonationError:
		var p DonationError
		if err := b.decode(ev, &p); err != nil {
			return notify.Notification{}, err
		}
		// Persistent: the user must dismiss failures explicitly.
		return notify.New(notify.TypeError, "Donation Failed", p.Message), nil

	case SignalBlockchainConfirmed:
		var p BlockchainConfirmed
		if err := b.decode(ev, &p); err != nil {
			return notify.Notification{}, err
		}
		msg := fmt.Sprintf("Donation %s of %s %s has been confirmed on-chain.",
			p.DonationID, formatAmount(p.Amount), p.Currency)
		return notify.New(notify.TypeSuccess, "Donation Confirmed", msg).
			WithDuration(blockchainConfirmedDuration), nil

	case SignalBlockchainPending:
		var p BlockchainPending
		if err := b.decode(ev, &p); err != nil {
			return notify.Notification{}, err
		}
		msg := fmt.Sprintf("%d of %d confirmations received.", p.Confirmations, p.Required)
		return notify.New(notify.TypeInfo, "Awaiting Confirmations", msg).
			WithDuration(blockchainPendingDuration), nil

	case SignalCampaignGoalReached:
		var p CampaignGoalReached
		if err := b.decode(ev, &p); err != nil {
			return notify.Notification{}, err
		}
		msg := fmt.Sprintf("%s has reached its fundraising goal!", p.CampaignName)
		return notify.New(notify.TypeSuccess, "Campaign Goal Reached!", msg).
			WithDuration(goalReachedDuration), nil

	case SignalSystemMaintenance:
		var p SystemMaintenance
		if err := b.decode(ev, &p); err != nil {
			return notify.Notification{}, err
		}
		d := p.Duration
		if d <= 0 {
			d = maintenanceDefaultDuration
		}
		return notify.New(notify.TypeWarning, "Scheduled Maintenance", p.Message).
			WithDuration(d), nil
	}

	return notify.Notification{}, fmt.Errorf("unknown signal %q", ev.Signal)
}

// decode unmarshals and validates a payload, failing closed on either step.
func (b *Bridge) decode(ev Event, out any) error {
	if err := json.Unmarshal(ev.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", ev.Signal, err)
	}
	if err := b.validate.Struct(out); err != nil {
		return fmt.Errorf("invalid %s payload: %w", ev.Signal, err)
	}
	return nil
}

// formatAmount renders a donation amount without a fixed precision, so whole
// amounts read as "100" rather than "100.000000".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
