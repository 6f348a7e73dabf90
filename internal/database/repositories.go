package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/givehope/donation-api/internal/models"
)

// DonationRepositoryInterface is the donation repository surface the
// handlers depend on, so tests can substitute a fake.
type DonationRepositoryInterface interface {
	Create(ctx context.Context, d *models.Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus, txReference *string) (*models.Donation, error)
	ListPaginated(ctx context.Context, status *models.DonationStatus, page, pageSize int) ([]*models.Donation, int, error)
	SumConfirmed(ctx context.Context) (map[string]float64, error)
}

// CampaignRepositoryInterface is the campaign repository surface the
// handlers depend on.
type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context) ([]*models.Campaign, error)
	AddToRaised(ctx context.Context, id uuid.UUID, amount float64) (*models.Campaign, error)
}

// SubscriberRepositoryInterface is the newsletter repository surface.
type SubscriberRepositoryInterface interface {
	Subscribe(ctx context.Context, email string) (bool, error)
	Unsubscribe(ctx context.Context, email string) error
	Count(ctx context.Context) (int, error)
}

// ContactRepositoryInterface is the contact form repository surface.
type ContactRepositoryInterface interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	ListRecent(ctx context.Context, limit int) ([]*models.ContactMessage, error)
}

// Ensure concrete types implement the interfaces.
var (
	_ DonationRepositoryInterface   = (*DonationRepository)(nil)
	_ CampaignRepositoryInterface   = (*CampaignRepository)(nil)
	_ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
	_ ContactRepositoryInterface    = (*ContactRepository)(nil)
)
