package types

import (
	"strings"
	"testing"
)

func TestKeyHashFromSecret(t *testing.T) {
	a := KeyHashFromSecret([]byte("hunter2"))
	b := KeyHashFromSecret([]byte("hunter2"))
	c := KeyHashFromSecret([]byte("hunter3"))

	if a != b {
		t.Error("same secret must derive the same hash")
	}
	if a == c {
		t.Error("different secrets must derive different hashes")
	}
	if a.IsZero() {
		t.Error("derived hash must not be zero")
	}
}

func TestKeyHashParseRoundTrip(t *testing.T) {
	h := KeyHashFromSecret([]byte("round-trip"))

	parsed, err := ParseKeyHash(h.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != h {
		t.Errorf("round-trip mismatch: %s != %s", parsed, h)
	}

	// Without the 0x prefix.
	parsed, err = ParseKeyHash(strings.TrimPrefix(h.String(), "0x"))
	if err != nil {
		t.Fatalf("parse without prefix failed: %v", err)
	}
	if parsed != h {
		t.Errorf("round-trip mismatch without prefix: %s != %s", parsed, h)
	}
}

func TestKeyHashParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short", "0xabcd"},
		{"long", "0x" + strings.Repeat("ab", 33)},
		{"non-hex", "0x" + strings.Repeat("zz", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseKeyHash(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestAddressIsZero(t *testing.T) {
	if !Address("").IsZero() {
		t.Error("empty address must be zero")
	}
	if Address("alice").IsZero() {
		t.Error("non-empty address must not be zero")
	}
}
