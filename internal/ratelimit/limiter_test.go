package ratelimit

import (
	"testing"
	"time"
)

func TestCheck_QuotaExhaustion(t *testing.T) {
	t.Parallel()

	l := NewWithSweepInterval(nil, time.Hour)
	defer l.Close()

	const max = 5
	for i := 0; i < max; i++ {
		res := l.Check("ip:10.0.0.1", max, time.Minute)
		if !res.Allowed {
			t.Fatalf("request %d: expected allowed", i+1)
		}
		want := max - i - 1
		if res.Remaining != want {
			t.Errorf("request %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res := l.Check("ip:10.0.0.1", max, time.Minute)
	if res.Allowed {
		t.Error("expected request over quota to be denied")
	}
	if res.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", res.Remaining)
	}
}

func TestCheck_DenyEchoesResetAt(t *testing.T) {
	t.Parallel()

	l := NewWithSweepInterval(nil, time.Hour)
	defer l.Close()

	first := l.Check("ip:10.0.0.2", 1, time.Minute)
	denied := l.Check("ip:10.0.0.2", 1, time.Minute)

	if denied.Allowed {
		t.Fatal("second request should be denied")
	}
	if !denied.ResetAt.Equal(first.ResetAt) {
		t.Errorf("deny changed resetAt: got %v, want %v", denied.ResetAt, first.ResetAt)
	}
}

func TestCheck_WindowReset(t *testing.T) {
	t.Parallel()

	l := NewWithSweepInterval(nil, time.Hour)
	defer l.Close()

	const max = 3
	for i := 0; i < max; i++ {
		l.Check("ip:10.0.0.3", max, 30*time.Millisecond)
	}
	if res := l.Check("ip:10.0.0.3", max, 30*time.Millisecond); res.Allowed {
		t.Fatal("quota should be exhausted before the window elapses")
	}

	time.Sleep(40 * time.Millisecond)

	res := l.Check("ip:10.0.0.3", max, 30*time.Millisecond)
	if !res.Allowed {
		t.Fatal("expected a fresh window after the old one elapsed")
	}
	if res.Remaining != max-1 {
		t.Errorf("remaining = %d, want %d", res.Remaining, max-1)
	}
}

func TestCheck_IdentifiersAreIndependent(t *testing.T) {
	t.Parallel()

	l := NewWithSweepInterval(nil, time.Hour)
	defer l.Close()

	l.Check("ip:1.1.1.1", 1, time.Minute)
	if res := l.Check("ip:1.1.1.1", 1, time.Minute); res.Allowed {
		t.Fatal("first identifier should be exhausted")
	}
	if res := l.Check("ip:2.2.2.2", 1, time.Minute); !res.Allowed {
		t.Fatal("second identifier should have its own counter")
	}
}

func TestAllow_AuthPresetScenario(t *testing.T) {
	t.Parallel()

	l := NewWithSweepInterval(nil, time.Hour)
	defer l.Close()

	wantRemaining := []int{2, 1, 0}
	for i, want := range wantRemaining {
		res := l.Allow("ip:1.2.3.4", PresetAuth)
		if !res.Allowed {
			t.Fatalf("attempt %d: expected allowed", i+1)
		}
		if res.Remaining != want {
			t.Errorf("attempt %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res := l.Allow("ip:1.2.3.4", PresetAuth)
	if res.Allowed {
		t.Error("fourth attempt within the window should be denied")
	}
	if res.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", res.Remaining)
	}
}

func TestAllow_PresetsDoNotCollide(t *testing.T) {
	t.Parallel()

	l := NewWithSweepInterval(nil, time.Hour)
	defer l.Close()

	for i := 0; i < PresetAuth.MaxRequests; i++ {
		l.Allow("ip:9.9.9.9", PresetAuth)
	}
	if res := l.Allow("ip:9.9.9.9", PresetAuth); res.Allowed {
		t.Fatal("AUTH quota should be exhausted")
	}

	// Counters are keyed by (preset, identifier): exhausting AUTH must not
	// consume the same client's STANDARD quota.
	res := l.Allow("ip:9.9.9.9", PresetStandard)
	if !res.Allowed {
		t.Error("STANDARD quota should be untouched by AUTH exhaustion")
	}
	if res.Remaining != PresetStandard.MaxRequests-1 {
		t.Errorf("remaining = %d, want %d", res.Remaining, PresetStandard.MaxRequests-1)
	}
}

func TestSweep_RemovesExpiredEntries(t *testing.T) {
	t.Parallel()

	l := NewWithSweepInterval(nil, 20*time.Millisecond)
	defer l.Close()

	l.Check("ip:gone", 10, 10*time.Millisecond)
	l.Check("ip:stays", 10, time.Hour)

	time.Sleep(60 * time.Millisecond)

	if got := l.Len(); got != 1 {
		t.Errorf("entries after sweep = %d, want 1", got)
	}
}

func TestClose_ClearsState(t *testing.T) {
	t.Parallel()

	l := NewWithSweepInterval(nil, time.Hour)
	l.Check("ip:x", 10, time.Minute)
	l.Close()

	if got := l.Len(); got != 0 {
		t.Errorf("entries after close = %d, want 0", got)
	}
}
