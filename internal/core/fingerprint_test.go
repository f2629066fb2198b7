package core

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("2026-01-05T10:00:00Z", "12.50", " Coffee Shop ")
	b := Fingerprint("2026-01-05T10:00:00Z", "12.50", " Coffee Shop ")
	if a != b {
		t.Fatalf("same inputs produced %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestFingerprintTrimsDescriptionOnly(t *testing.T) {
	trimmed := Fingerprint("2026-01-05T10:00:00Z", "12.50", "Coffee Shop")
	padded := Fingerprint("2026-01-05T10:00:00Z", "12.50", "  Coffee Shop  ")
	if trimmed != padded {
		t.Fatalf("description padding changed the fingerprint")
	}
	// The amount string is hashed literally; "12.5" is a different record
	// until the caller normalizes it.
	if Fingerprint("2026-01-05T10:00:00Z", "12.5", "Coffee Shop") == trimmed {
		t.Fatalf("different raw amount should change the fingerprint")
	}
}

func TestFingerprintDistinguishesFields(t *testing.T) {
	base := Fingerprint("t", "1.00", "desc")
	cases := [][3]string{
		{"t2", "1.00", "desc"},
		{"t", "2.00", "desc"},
		{"t", "1.00", "other"},
	}
	for _, c := range cases {
		if Fingerprint(c[0], c[1], c[2]) == base {
			t.Fatalf("inputs %v collided with base", c)
		}
	}
}
