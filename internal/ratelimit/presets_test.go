package ratelimit

import (
	"testing"
	"time"
)

func TestRegistry_Defaults(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	tests := []struct {
		name   string
		max    int
		window time.Duration
	}{
		{"AUTH", 3, 5 * time.Minute},
		{"LENIENT", 100, time.Minute},
		{"NEWSLETTER", 3, time.Hour},
		{"CONTACT", 5, time.Hour},
	}
	for _, tt := range tests {
		p, ok := r.Get(tt.name)
		if !ok {
			t.Fatalf("preset %s not found", tt.name)
		}
		if p.MaxRequests != tt.max || p.Window != tt.window {
			t.Errorf("%s = %d/%v, want %d/%v", tt.name, p.MaxRequests, p.Window, tt.max, tt.window)
		}
	}

	if _, ok := r.Get("NOPE"); ok {
		t.Error("unknown preset should not resolve")
	}
}

func TestRegistry_OverridesWinAndReset(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Apply([]Override{{Name: "AUTH", MaxRequests: 10, Window: time.Minute}})

	p, ok := r.Get("AUTH")
	if !ok || p.MaxRequests != 10 || p.Window != time.Minute {
		t.Errorf("override not applied: got %+v", p)
	}

	r.Reset()
	p, _ = r.Get("AUTH")
	if p.MaxRequests != 3 {
		t.Errorf("reset did not restore default: got %+v", p)
	}
}

func TestRegistry_IgnoresInvalidOverrides(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Apply([]Override{
		{Name: "AUTH", MaxRequests: 0, Window: time.Minute},
		{Name: "CONTACT", MaxRequests: 5, Window: 0},
	})

	if p, _ := r.Get("AUTH"); p.MaxRequests != 3 {
		t.Errorf("zero max override should be ignored, got %+v", p)
	}
	if p, _ := r.Get("CONTACT"); p.Window != time.Hour {
		t.Errorf("zero window override should be ignored, got %+v", p)
	}
}
