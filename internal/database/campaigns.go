package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/givehope/donation-api/internal/models"
)

// CampaignRepository handles campaign database operations.
type CampaignRepository struct {
	db *DB
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(db *DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, name, description, currency, goal, raised, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Description, c.Currency, c.Goal, c.Raised, now, now,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// GetByID retrieves a campaign. Returns nil when the id is unknown.
func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c := &models.Campaign{}
	query := `
		SELECT id, name, description, currency, goal, raised, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.Currency, &c.Goal, &c.Raised, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// List returns all campaigns, newest first.
func (r *CampaignRepository) List(ctx context.Context) ([]*models.Campaign, error) {
	query := `
		SELECT id, name, description, currency, goal, raised, created_at, updated_at
		FROM campaigns
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []*models.Campaign
	for rows.Next() {
		c := &models.Campaign{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Currency, &c.Goal, &c.Raised, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return out, nil
}

// AddToRaised atomically adds amount to the campaign's raised total and
// returns the updated row, or nil if the id is unknown. The single UPDATE
// keeps concurrent confirmations from losing increments.
func (r *CampaignRepository) AddToRaised(ctx context.Context, id uuid.UUID, amount float64) (*models.Campaign, error) {
	c := &models.Campaign{}
	query := `
		UPDATE campaigns
		SET raised = raised + $2, updated_at = $3
		WHERE id = $1
		RETURNING id, name, description, currency, goal, raised, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, id, amount, time.Now()).Scan(
		&c.ID, &c.Name, &c.Description, &c.Currency, &c.Goal, &c.Raised, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("add to campaign raised total: %w", err)
	}
	return c, nil
}
