package cart

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundCurrency_BankersRounding(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"2.675", "2.68"},
		{"2.665", "2.66"},
		{"2.685", "2.68"},
		{"-2.675", "-2.68"},
		{"10", "10"},
		{"0.005", "0"},
		{"0.015", "0.02"},
	}
	for _, tc := range cases {
		got := RoundCurrency(dec(tc.in), 2)
		if got.String() != tc.expected {
			t.Fatalf("RoundCurrency(%s) expected %s, got %s", tc.in, tc.expected, got.String())
		}
	}
}

func TestRoundToNearest_CashDenomination(t *testing.T) {
	cases := []struct {
		in       string
		denom    string
		expected string
	}{
		{"196.65", "0.5", "196.5"},
		{"196.80", "0.5", "197"},
		{"196.75", "0.5", "197"},
		{"-180", "0.5", "-180"},
		{"171", "0.5", "171"},
		{"196.65", "0.01", "196.65"},
		{"123.4", "50", "100"},
		{"125", "50", "100"},
		{"175", "50", "200"},
	}
	for _, tc := range cases {
		got := RoundToNearest(dec(tc.in), dec(tc.denom))
		if !got.Equal(dec(tc.expected)) {
			t.Fatalf("RoundToNearest(%s, %s) expected %s, got %s", tc.in, tc.denom, tc.expected, got.String())
		}
	}
}

func TestRoundToNearest_NonPositiveDenominationFallsBackToCurrency(t *testing.T) {
	got := RoundToNearest(dec("196.654"), decimal.Zero)
	if !got.Equal(dec("196.65")) {
		t.Fatalf("expected 196.65, got %s", got.String())
	}
}

func TestNewFromFloatSafe_CoercesNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := NewFromFloatSafe(f); !got.IsZero() {
			t.Fatalf("NewFromFloatSafe(%v) expected 0, got %s", f, got.String())
		}
	}
	if got := NewFromFloatSafe(12.5); !got.Equal(dec("12.5")) {
		t.Fatalf("NewFromFloatSafe(12.5) got %s", got.String())
	}
}
