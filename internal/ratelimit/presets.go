package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Preset is a named, immutable request quota. Call sites pick a preset
// instead of inlining magic numbers; each one encodes a deliberate
// trust/risk trade-off for the endpoints it gates.
type Preset struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

// Named presets.
var (
	// PresetStrict gates endpoints that trigger outbound side effects.
	PresetStrict = Preset{Name: "STRICT", MaxRequests: 10, Window: time.Minute}
	// PresetStandard is the default for authenticated API traffic.
	PresetStandard = Preset{Name: "STANDARD", MaxRequests: 30, Window: time.Minute}
	// PresetLenient covers cheap read-only endpoints.
	PresetLenient = Preset{Name: "LENIENT", MaxRequests: 100, Window: time.Minute}
	// PresetAuth throttles credential verification attempts.
	PresetAuth = Preset{Name: "AUTH", MaxRequests: 3, Window: 5 * time.Minute}
	// PresetCryptoPayment gates crypto payment address requests.
	PresetCryptoPayment = Preset{Name: "CRYPTO_PAYMENT", MaxRequests: 10, Window: time.Minute}
	// PresetNewsletter keeps newsletter signups from being scripted.
	PresetNewsletter = Preset{Name: "NEWSLETTER", MaxRequests: 3, Window: time.Hour}
	// PresetContact keeps the contact form from being scripted.
	PresetContact = Preset{Name: "CONTACT", MaxRequests: 5, Window: time.Hour}
)

func defaults() map[string]Preset {
	m := make(map[string]Preset)
	for _, p := range []Preset{
		PresetStrict, PresetStandard, PresetLenient, PresetAuth,
		PresetCryptoPayment, PresetNewsletter, PresetContact,
	} {
		m[p.Name] = p
	}
	return m
}

// Override replaces a named preset's quota at runtime, typically loaded
// from the database by the reloader.
type Override struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

// OverrideSource supplies preset overrides, usually a database repository.
type OverrideSource interface {
	ListOverrides(ctx context.Context) ([]Override, error)
}

// Registry resolves preset names to quotas. Defaults are compiled in;
// overrides can be applied and withdrawn at runtime.
type Registry struct {
	mu        sync.RWMutex
	presets   map[string]Preset
	overrides map[string]Preset
}

// NewRegistry returns a registry holding the built-in presets.
func NewRegistry() *Registry {
	return &Registry{
		presets:   defaults(),
		overrides: make(map[string]Preset),
	}
}

// Get resolves a preset by name. Overrides win over defaults.
func (r *Registry) Get(name string) (Preset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.overrides[name]; ok {
		return p, true
	}
	p, ok := r.presets[name]
	return p, ok
}

// Names returns the known preset names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	return names
}

// Apply installs overrides for the named presets. Overrides for unknown
// names are installed too, so operators can stage presets ahead of a deploy.
func (r *Registry) Apply(overrides []Override) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range overrides {
		if o.MaxRequests <= 0 || o.Window <= 0 {
			continue
		}
		r.overrides[o.Name] = Preset{Name: o.Name, MaxRequests: o.MaxRequests, Window: o.Window}
	}
}

// Reset withdraws all overrides, restoring compiled-in defaults.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = make(map[string]Preset)
}
