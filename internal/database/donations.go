package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/givehope/donation-api/internal/models"
)

// DonationRepository handles donation database operations.
type DonationRepository struct {
	db *DB
}

// NewDonationRepository creates a new donation repository.
func NewDonationRepository(db *DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create inserts a donation. The row timestamps are written back to d.
func (r *DonationRepository) Create(ctx context.Context, d *models.Donation) error {
	query := `
		INSERT INTO donations (id, campaign_id, donor_name, donor_email, amount, currency, method, status, tx_reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		d.ID,
		d.CampaignID,
		d.DonorName,
		d.DonorEmail,
		d.Amount,
		d.Currency,
		d.Method,
		d.Status,
		d.TxReference,
		now,
		now,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	return nil
}

// GetByID retrieves a donation. Returns nil when the id is unknown.
func (r *DonationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	d := &models.Donation{}
	query := `
		SELECT id, campaign_id, donor_name, donor_email, amount, currency, method, status, tx_reference, created_at, updated_at
		FROM donations
		WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.CampaignID,
		&d.DonorName,
		&d.DonorEmail,
		&d.Amount,
		&d.Currency,
		&d.Method,
		&d.Status,
		&d.TxReference,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get donation: %w", err)
	}
	return d, nil
}

// UpdateStatus moves a donation to a new status, optionally recording a
// transaction reference. Returns the updated row, or nil if the id is
// unknown.
func (r *DonationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus, txReference *string) (*models.Donation, error) {
	d := &models.Donation{}
	query := `
		UPDATE donations
		SET status = $2, tx_reference = COALESCE($3, tx_reference), updated_at = $4
		WHERE id = $1
		RETURNING id, campaign_id, donor_name, donor_email, amount, currency, method, status, tx_reference, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, id, status, txReference, time.Now()).Scan(
		&d.ID,
		&d.CampaignID,
		&d.DonorName,
		&d.DonorEmail,
		&d.Amount,
		&d.Currency,
		&d.Method,
		&d.Status,
		&d.TxReference,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update donation status: %w", err)
	}
	return d, nil
}

// ListPaginated returns a page of donations, newest first, optionally
// filtered by status, along with the total match count.
func (r *DonationRepository) ListPaginated(ctx context.Context, status *models.DonationStatus, page, pageSize int) ([]*models.Donation, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countQuery := `SELECT COUNT(*) FROM donations WHERE ($1::text IS NULL OR status = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count donations: %w", err)
	}

	query := `
		SELECT id, campaign_id, donor_name, donor_email, amount, currency, method, status, tx_reference, created_at, updated_at
		FROM donations
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, status, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var out []*models.Donation
	for rows.Next() {
		d := &models.Donation{}
		err := rows.Scan(
			&d.ID,
			&d.CampaignID,
			&d.DonorName,
			&d.DonorEmail,
			&d.Amount,
			&d.Currency,
			&d.Method,
			&d.Status,
			&d.TxReference,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan donation: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate donations: %w", err)
	}
	return out, total, nil
}

// SumConfirmed reports the confirmed donation total per currency, for the
// admin financial stats endpoint.
func (r *DonationRepository) SumConfirmed(ctx context.Context) (map[string]float64, error) {
	query := `
		SELECT currency, COALESCE(SUM(amount), 0)
		FROM donations
		WHERE status = $1
		GROUP BY currency
	`
	rows, err := r.db.QueryContext(ctx, query, models.DonationStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("sum donations: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var currency string
		var sum float64
		if err := rows.Scan(&currency, &sum); err != nil {
			return nil, fmt.Errorf("scan donation total: %w", err)
		}
		totals[currency] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donation totals: %w", err)
	}
	return totals, nil
}
