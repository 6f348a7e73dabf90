package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reloader periodically loads preset overrides from a source (the database)
// into a registry, so operators can retune quotas without a deploy.
type Reloader struct {
	registry *Registry
	source   OverrideSource
	interval time.Duration
	log      *zap.Logger
}

// NewReloader creates a reloader. It does not start loading until Start.
func NewReloader(registry *Registry, source OverrideSource, interval time.Duration, log *zap.Logger) *Reloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reloader{registry: registry, source: source, interval: interval, log: log}
}

// Start loads once immediately, then reloads on the interval until ctx is
// cancelled. A failed load keeps the previously applied overrides.
func (r *Reloader) Start(ctx context.Context) {
	r.load(ctx)
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

func (r *Reloader) load(ctx context.Context) {
	overrides, err := r.source.ListOverrides(ctx)
	if err != nil {
		r.log.Warn("failed_to_load_preset_overrides", zap.Error(err))
		return
	}
	if len(overrides) == 0 {
		return
	}
	r.registry.Apply(overrides)
	r.log.Debug("preset_overrides_applied", zap.Int("count", len(overrides)))
}
