package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	overrides []Override
	err       error
}

func (f *fakeSource) ListOverrides(ctx context.Context) ([]Override, error) {
	return f.overrides, f.err
}

func TestReloader_AppliesOverridesOnStart(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	src := &fakeSource{overrides: []Override{{Name: "CONTACT", MaxRequests: 20, Window: time.Minute}}}

	// Interval <= 0 means a single load.
	NewReloader(reg, src, 0, nil).Start(context.Background())

	p, _ := reg.Get("CONTACT")
	if p.MaxRequests != 20 || p.Window != time.Minute {
		t.Errorf("override not applied: got %+v", p)
	}
}

func TestReloader_KeepsOverridesOnSourceError(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Apply([]Override{{Name: "AUTH", MaxRequests: 7, Window: time.Minute}})
	src := &fakeSource{err: errors.New("db down")}

	NewReloader(reg, src, 0, nil).Start(context.Background())

	p, _ := reg.Get("AUTH")
	if p.MaxRequests != 7 {
		t.Errorf("failed load should keep prior overrides, got %+v", p)
	}
}
