package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/givehope/donation-api/internal/models"
	"github.com/givehope/donation-api/internal/ratelimit"
)

// RatelimitPresetRepository stores preset overrides, letting operators
// retune quotas without a deploy.
type RatelimitPresetRepository struct {
	db *DB
}

// NewRatelimitPresetRepository creates a new preset override repository.
func NewRatelimitPresetRepository(db *DB) *RatelimitPresetRepository {
	return &RatelimitPresetRepository{db: db}
}

// Get retrieves one override by preset name, or nil if none is stored.
func (r *RatelimitPresetRepository) Get(ctx context.Context, name string) (*models.RatelimitPreset, error) {
	p := &models.RatelimitPreset{}
	row := r.db.QueryRowContext(ctx, `
		SELECT preset_name, max_requests, window_ms, created_at, updated_at
		FROM ratelimit_presets WHERE preset_name = $1
	`, name)
	err := row.Scan(&p.PresetName, &p.MaxRequests, &p.WindowMS, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preset override: %w", err)
	}
	return p, nil
}

// Set upserts an override for a named preset.
func (r *RatelimitPresetRepository) Set(ctx context.Context, p *models.RatelimitPreset) error {
	name := strings.TrimSpace(p.PresetName)
	if name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if p.MaxRequests <= 0 || p.WindowMS <= 0 {
		return fmt.Errorf("max_requests and window_ms must be positive")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_presets (preset_name, max_requests, window_ms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (preset_name) DO UPDATE SET
			max_requests = EXCLUDED.max_requests,
			window_ms = EXCLUDED.window_ms,
			updated_at = EXCLUDED.updated_at
	`, name, p.MaxRequests, p.WindowMS, now, now)
	if err != nil {
		return fmt.Errorf("set preset override: %w", err)
	}
	return nil
}

// Delete removes an override, restoring the compiled-in default.
func (r *RatelimitPresetRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ratelimit_presets WHERE preset_name = $1`, name); err != nil {
		return fmt.Errorf("delete preset override: %w", err)
	}
	return nil
}

// List returns all stored overrides.
func (r *RatelimitPresetRepository) List(ctx context.Context) ([]*models.RatelimitPreset, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT preset_name, max_requests, window_ms, created_at, updated_at
		FROM ratelimit_presets ORDER BY preset_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list preset overrides: %w", err)
	}
	defer rows.Close()

	var out []*models.RatelimitPreset
	for rows.Next() {
		p := &models.RatelimitPreset{}
		if err := rows.Scan(&p.PresetName, &p.MaxRequests, &p.WindowMS, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan preset override: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preset overrides: %w", err)
	}
	return out, nil
}

// ListOverrides implements ratelimit.OverrideSource for the reloader.
func (r *RatelimitPresetRepository) ListOverrides(ctx context.Context) ([]ratelimit.Override, error) {
	stored, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ratelimit.Override, 0, len(stored))
	for _, p := range stored {
		out = append(out, ratelimit.Override{
			Name:        p.PresetName,
			MaxRequests: p.MaxRequests,
			Window:      p.Window(),
		})
	}
	return out, nil
}

var _ ratelimit.OverrideSource = (*RatelimitPresetRepository)(nil)
