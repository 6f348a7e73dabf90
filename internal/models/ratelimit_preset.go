package models

import "time"

// RatelimitPreset is a stored override for a named rate limit preset.
// WindowMS is the window length in milliseconds.
type RatelimitPreset struct {
	PresetName  string    `json:"preset_name"`
	MaxRequests int       `json:"max_requests"`
	WindowMS    int64     `json:"window_ms"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Window returns the override window as a duration.
func (p *RatelimitPreset) Window() time.Duration {
	return time.Duration(p.WindowMS) * time.Millisecond
}
