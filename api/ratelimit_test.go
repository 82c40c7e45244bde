package api

import (
	"testing"
	"time"
)

func TestFixedWindowLimiter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l := NewFixedWindowLimiter(time.Minute, 3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("fourth request in the window should be rejected")
	}

	// Another client keeps its own budget.
	if !l.Allow("10.0.0.2") {
		t.Fatal("other clients must not share the window")
	}

	// The window resets after it elapses.
	now = now.Add(time.Minute + time.Second)
	if !l.Allow("10.0.0.1") {
		t.Fatal("expected a fresh window after expiry")
	}
}

func TestFixedWindowLimiterCountsFromReset(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l := NewFixedWindowLimiter(time.Minute, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	now = now.Add(59 * time.Second)
	if !l.Allow("k") {
		t.Fatal("second request inside the window should be allowed")
	}
	// Still the same fixed window: the clock has not passed resetAt.
	if l.Allow("k") {
		t.Fatal("third request inside the window should be rejected")
	}
	now = now.Add(2 * time.Second)
	if !l.Allow("k") {
		t.Fatal("request after the reset point should start a new window")
	}
}
