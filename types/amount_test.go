package types

import (
	"encoding/json"
	"testing"
)

func TestAmountConstructors(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		decimal string
	}{
		{"Zero", ZeroAmount(), "0"},
		{"Small", NewAmount(500), "500"},
		{"Uint64 max", NewAmount(1<<63 + (1<<63 - 1)), "18446744073709551615"},
		{"Parsed", MustAmount("340282366920938463463374607431768211456"), "340282366920938463463374607431768211456"},
		{"Max", MaxAmount(), "115792089237316195423570985008687907853269984665640564039457584007913129639935"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.String(); got != tt.decimal {
				t.Errorf("String: got %s, want %s", got, tt.decimal)
			}
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	for _, s := range []string{"", "-1", "1.5", "abc", "115792089237316195423570985008687907853269984665640564039457584007913129639936"} {
		if _, err := ParseAmount(s); err == nil {
			t.Errorf("ParseAmount(%q): expected error", s)
		}
	}
}

func TestAmountCheckedArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() (Amount, bool)
		expected Amount
		ok       bool
	}{
		{"Add", func() (Amount, bool) { return NewAmount(100).Add(NewAmount(200)) }, NewAmount(300), true},
		{"Add overflow", func() (Amount, bool) { return MaxAmount().Add(NewAmount(1)) }, Amount{}, false},
		{"Sub", func() (Amount, bool) { return NewAmount(500).Sub(NewAmount(200)) }, NewAmount(300), true},
		{"Sub underflow", func() (Amount, bool) { return NewAmount(1).Sub(NewAmount(2)) }, Amount{}, false},
		{"Mul", func() (Amount, bool) { return NewAmount(5).Mul(100) }, NewAmount(500), true},
		{"Mul zero", func() (Amount, bool) { return NewAmount(0).Mul(1 << 62) }, ZeroAmount(), true},
		{"Mul overflow", func() (Amount, bool) { return MaxAmount().Mul(2) }, Amount{}, false},
		{"Sum", func() (Amount, bool) { return SumAmounts(NewAmount(1), NewAmount(2), NewAmount(3)) }, NewAmount(6), true},
		{"Sum empty", func() (Amount, bool) { return SumAmounts() }, ZeroAmount(), true},
		{"Sum overflow", func() (Amount, bool) { return SumAmounts(MaxAmount(), NewAmount(1)) }, Amount{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.op()
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAmountComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Amount
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", NewAmount(100), NewAmount(100), false, false, true},
		{"Less", NewAmount(50), NewAmount(100), true, false, false},
		{"Greater", NewAmount(200), NewAmount(100), false, true, false},
		{"Zero equal", NewAmount(0), ZeroAmount(), false, false, true},
		{"Max greater", MaxAmount(), NewAmount(100), false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestAmountUint64(t *testing.T) {
	if v, ok := NewAmount(42).Uint64(); !ok || v != 42 {
		t.Errorf("Uint64: got %d, %v", v, ok)
	}
	if _, ok := MaxAmount().Uint64(); ok {
		t.Error("Uint64: expected overflow for MaxAmount")
	}
}

func TestAmountTextRoundTrip(t *testing.T) {
	for _, a := range []Amount{ZeroAmount(), NewAmount(12345), MaxAmount()} {
		data, err := a.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		var back Amount
		if err := back.UnmarshalText(data); err != nil {
			t.Fatalf("UnmarshalText: %v", err)
		}
		if !back.Equal(a) {
			t.Errorf("round-trip mismatch: %v != %v", back, a)
		}
	}
}

func TestAmountBinaryRoundTrip(t *testing.T) {
	for _, a := range []Amount{ZeroAmount(), NewAmount(7), MustAmount("99999999999999999999999999"), MaxAmount()} {
		data, err := a.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}
		var back Amount
		if err := back.UnmarshalBinary(data); err != nil {
			t.Fatalf("UnmarshalBinary: %v", err)
		}
		if !back.Equal(a) {
			t.Errorf("round-trip mismatch: %v != %v", back, a)
		}
	}
}

func TestAmountJSON(t *testing.T) {
	data, err := json.Marshal(NewAmount(4900))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"4900"` {
		t.Errorf("JSON: got %s, want %q", data, `"4900"`)
	}

	var back Amount
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(NewAmount(4900)) {
		t.Errorf("JSON round-trip mismatch: %v", back)
	}
}
