package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Address identifies an account on the payment-token ledger. The engine treats
// it as an opaque string; it stores owner fields and gates the operator role
// with it but never interprets its contents.
type Address string

// IsZero returns true for the empty address.
func (a Address) IsZero() bool { return a == "" }

// KeyHashSize is the fixed byte length of a key identifier.
const KeyHashSize = 32

// KeyHash is the opaque caller-supplied key identifier. Callers are expected
// to derive it deterministically from a secret they hold; the ledger never
// sees the secret and assumes no structure beyond the fixed size.
type KeyHash [KeyHashSize]byte

// KeyHashFromSecret derives a key hash from a caller-held secret via SHA-256.
func KeyHashFromSecret(secret []byte) KeyHash {
	return KeyHash(sha256.Sum256(secret))
}

// ParseKeyHash parses a hex string (optionally 0x-prefixed) into a KeyHash.
func ParseKeyHash(s string) (KeyHash, error) {
	var h KeyHash
	trimmed := strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return h, fmt.Errorf("types: parse key hash %q: %w", s, err)
	}
	if len(raw) != KeyHashSize {
		return h, fmt.Errorf("types: parse key hash %q: want %d bytes, got %d", s, KeyHashSize, len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// Bytes returns the hash as a byte slice.
func (h KeyHash) Bytes() []byte { return h[:] }

// IsZero returns true for the all-zero hash.
func (h KeyHash) IsZero() bool { return h == KeyHash{} }

// String returns the 0x-prefixed hex representation.
func (h KeyHash) String() string { return "0x" + hex.EncodeToString(h[:]) }

// MarshalText implements encoding.TextMarshaler.
func (h KeyHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *KeyHash) UnmarshalText(data []byte) error {
	parsed, err := ParseKeyHash(string(data))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
