package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubscriberRepository handles newsletter subscriptions.
type SubscriberRepository struct {
	db *DB
}

// NewSubscriberRepository creates a new subscriber repository.
func NewSubscriberRepository(db *DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Subscribe adds an email to the newsletter. Subscribing an existing email
// is a no-op; the bool reports whether a new subscription was created.
func (r *SubscriberRepository) Subscribe(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, fmt.Errorf("email cannot be empty")
	}
	query := `
		INSERT INTO subscribers (id, email, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, uuid.New(), email, time.Now())
	if err != nil {
		return false, fmt.Errorf("subscribe %s: %w", email, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("subscribe %s: %w", email, err)
	}
	return n > 0, nil
}

// Unsubscribe removes an email. Removing an unknown email is a no-op.
func (r *SubscriberRepository) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE email = $1`, email); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", email, err)
	}
	return nil
}

// Count reports how many subscriptions exist.
func (r *SubscriberRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}
