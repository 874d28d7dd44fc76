// Package types provides common types used across AccessLedger.
package types

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Amount is a 256-bit unsigned token amount in the payment token's base unit.
// All arithmetic is integer-only and overflow-checked — operations report
// success explicitly instead of wrapping.
//
// Examples:
//   - NewAmount(500) = 500 base units
//   - MustAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935") = MaxAmount()
type Amount struct {
	v uint256.Int
}

// NewAmount creates an Amount from a uint64 value.
func NewAmount(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// ParseAmount parses a decimal string into an Amount.
func ParseAmount(s string) (Amount, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("types: parse amount %q: %w", s, err)
	}
	return Amount{v: *v}, nil
}

// MustAmount is like ParseAmount but panics on error. Use for hardcoded values.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ZeroAmount returns the zero Amount.
func ZeroAmount() Amount { return Amount{} }

// MaxAmount returns the largest representable Amount (2^256 - 1).
func MaxAmount() Amount {
	var a Amount
	a.v.SetAllOne()
	return a
}

// Arithmetic operations. Each returns ok=false when the result does not fit
// in 256 bits (or would go below zero for Sub); the returned Amount is then
// meaningless and must be discarded.

// Add returns a+b. ok is false on overflow.
func (a Amount) Add(b Amount) (Amount, bool) {
	var r Amount
	_, overflow := r.v.AddOverflow(&a.v, &b.v)
	return r, !overflow
}

// Sub returns a-b. ok is false when b > a.
func (a Amount) Sub(b Amount) (Amount, bool) {
	var r Amount
	_, underflow := r.v.SubOverflow(&a.v, &b.v)
	return r, !underflow
}

// Mul returns a*n. ok is false on overflow. This is the product used for
// price-per-second times elapsed-seconds billing.
func (a Amount) Mul(n uint64) (Amount, bool) {
	var r, b Amount
	b.v.SetUint64(n)
	_, overflow := r.v.MulOverflow(&a.v, &b.v)
	return r, !overflow
}

// SumAmounts returns the checked sum of all values. ok is false on overflow.
func SumAmounts(values ...Amount) (Amount, bool) {
	var total Amount
	for _, v := range values {
		next, ok := total.Add(v)
		if !ok {
			return Amount{}, false
		}
		total = next
	}
	return total, true
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// Equal returns true if both amounts are equal.
func (a Amount) Equal(b Amount) bool { return a.v.Eq(&b.v) }

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool { return a.v.Lt(&b.v) }

// GreaterThan returns true if a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.v.Gt(&b.v) }

// Cmp returns -1, 0 or 1 depending on whether a is less than, equal to or
// greater than b.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// Uint64 returns the amount as a uint64. ok is false if it does not fit.
func (a Amount) Uint64() (uint64, bool) {
	if !a.v.IsUint64() {
		return 0, false
	}
	return a.v.Uint64(), true
}

// Float64 returns an approximate float64 value, for metrics and display only.
// Never use the result for accounting.
func (a Amount) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.v.ToBig()).Float64()
	return f
}

// String returns the decimal representation.
func (a Amount) String() string { return a.v.Dec() }

// MarshalText implements encoding.TextMarshaler (decimal string).
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler (minimal big-endian bytes).
func (a Amount) MarshalBinary() ([]byte, error) {
	return a.v.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *Amount) UnmarshalBinary(data []byte) error {
	if len(data) > 32 {
		return fmt.Errorf("types: amount encoding too long: %d bytes", len(data))
	}
	a.v.SetBytes(data)
	return nil
}
