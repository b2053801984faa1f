package ratelimit

import "testing"

func TestAllowWithinBurst(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("client", 3, 1) {
			t.Fatalf("request %d inside the burst must pass", i+1)
		}
	}
	if l.Allow("client", 3, 1) {
		t.Fatalf("request over the burst must be rejected")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("first request for a must pass")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("a is exhausted")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("b has its own bucket")
	}
}
