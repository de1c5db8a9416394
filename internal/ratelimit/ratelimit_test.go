package ratelimit

import (
	"testing"
	"time"
)

// frozen pins the limiter's clock so window math is deterministic.
func frozen(l *Limiter, at time.Time) *time.Time {
	now := at
	l.now = func() time.Time { return now }
	return &now
}

func TestAllowUnderLimit(t *testing.T) {
	l := New(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
}

func TestDenyOverLimit(t *testing.T) {
	l := New(3, time.Hour)
	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("4th attempt should be denied")
	}
}

func TestZeroMaxDisablesLimiting(t *testing.T) {
	l := New(0, time.Hour)
	for i := 0; i < 100; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatal("limiting should be disabled with max 0")
		}
	}
}

func TestAddressesIndependent(t *testing.T) {
	l := New(2, time.Hour)
	l.Allow("1.1.1.1")
	l.Allow("1.1.1.1")

	if l.Allow("1.1.1.1") {
		t.Fatal("1.1.1.1 should be denied")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatal("2.2.2.2 should be allowed")
	}
}

func TestWindowSlides(t *testing.T) {
	l := New(2, time.Minute)
	now := frozen(l, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	l.Allow("1.2.3.4")
	l.Allow("1.2.3.4")
	if l.Allow("1.2.3.4") {
		t.Fatal("should be denied inside the window")
	}

	*now = now.Add(61 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatal("should be allowed after the window slides")
	}
}

func TestPrune(t *testing.T) {
	l := New(2, time.Minute)
	now := frozen(l, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	l.Allow("1.1.1.1")
	*now = now.Add(30 * time.Second)
	l.Allow("2.2.2.2")

	*now = now.Add(45 * time.Second) // 1.1.1.1 aged out, 2.2.2.2 still live
	l.Prune()

	if len(l.entries) != 1 {
		t.Fatalf("expected 1 live entry after prune, got %d", len(l.entries))
	}
	if _, ok := l.entries["2.2.2.2"]; !ok {
		t.Error("live address was pruned")
	}
}
