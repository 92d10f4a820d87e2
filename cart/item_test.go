package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSetDiscountPercent_DerivesEffectiveRate(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		listRate     string
		percent      string
		expectedRate string
	}{
		{"100", "10", "90"},
		{"100", "0", "100"},
		{"100", "100", "0"},
		{"33.33", "15", "28.33"},
		{"100", "-5", "100"}, // negative clamps to 0
	}
	for _, tc := range cases {
		it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec(tc.listRate), cfg)
		it.SetDiscountPercent(dec(tc.percent), cfg)
		if !it.Rate.Equal(dec(tc.expectedRate)) {
			t.Fatalf("SetDiscountPercent(%s) on listRate %s expected rate %s, got %s",
				tc.percent, tc.listRate, tc.expectedRate, it.Rate.String())
		}
	}
}

func TestSetDiscountPercent_NegativeClampsToZeroWithNotice(t *testing.T) {
	cfg := DefaultConfig()
	it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("100"), cfg)
	notice := it.SetDiscountPercent(dec("-5"), cfg)

	if notice == nil || notice.Code != NoticeNegativeInputClamped {
		t.Fatalf("expected negative-input notice, got %+v", notice)
	}
	if !it.DiscountPercent.IsZero() {
		t.Fatalf("expected discount 0, got %s", it.DiscountPercent.String())
	}
	if !it.Rate.Equal(dec("100")) {
		t.Fatalf("expected rate back at list rate, got %s", it.Rate.String())
	}
}

func TestSetDiscountPercent_ClampsToMaximumWithNotice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxItemDiscountPercent = dec("20")

	it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("100"), cfg)
	notice := it.SetDiscountPercent(dec("35"), cfg)

	if notice == nil || notice.Code != NoticeMaxDiscountApplied {
		t.Fatalf("expected max discount notice, got %+v", notice)
	}
	if !it.DiscountPercent.Equal(dec("20")) {
		t.Fatalf("expected discount clamped to 20, got %s", it.DiscountPercent.String())
	}
	if !it.Rate.Equal(dec("80")) {
		t.Fatalf("expected rate 80, got %s", it.Rate.String())
	}
}

func TestSetEffectiveRate_ClampsIntoPriceBand(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		requested       string
		expectedRate    string
		expectedPercent string
		noticeCode      NoticeCode
	}{
		{"90", "90", "10", ""},
		{"100", "100", "0", ""},
		{"120", "100", "0", NoticePriceExceedsLimit},
		{"-5", "0", "100", NoticeNegativeInputClamped},
	}
	for _, tc := range cases {
		it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("100"), cfg)
		notice := it.SetEffectiveRate(dec(tc.requested), cfg)

		if !it.Rate.Equal(dec(tc.expectedRate)) {
			t.Fatalf("SetEffectiveRate(%s) expected rate %s, got %s", tc.requested, tc.expectedRate, it.Rate.String())
		}
		if !it.DiscountPercent.Equal(dec(tc.expectedPercent)) {
			t.Fatalf("SetEffectiveRate(%s) expected percent %s, got %s", tc.requested, tc.expectedPercent, it.DiscountPercent.String())
		}
		if tc.noticeCode == "" && notice != nil {
			t.Fatalf("SetEffectiveRate(%s) unexpected notice %+v", tc.requested, notice)
		}
		if tc.noticeCode != "" && (notice == nil || notice.Code != tc.noticeCode) {
			t.Fatalf("SetEffectiveRate(%s) expected notice %s, got %+v", tc.requested, tc.noticeCode, notice)
		}
	}
}

func TestSetEffectiveRate_MaxDiscountWinsOverKeyedPrice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxItemDiscountPercent = dec("25")

	it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("100"), cfg)
	notice := it.SetEffectiveRate(dec("40"), cfg) // implies 60% off

	if notice == nil || notice.Code != NoticeMaxDiscountApplied {
		t.Fatalf("expected max discount notice, got %+v", notice)
	}
	if !it.Rate.Equal(dec("75")) {
		t.Fatalf("expected rate re-derived to 75, got %s", it.Rate.String())
	}
	if !it.DiscountPercent.Equal(dec("25")) {
		t.Fatalf("expected percent 25, got %s", it.DiscountPercent.String())
	}
}

func TestLineAmount_IdempotentRecompute(t *testing.T) {
	cfg := DefaultConfig()
	it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("33.33"), cfg)
	it.SetQuantity(dec("3"), cfg)
	it.SetDiscountPercent(dec("12.5"), cfg)

	first := it.Amount
	it.refresh(cfg)
	it.refresh(cfg)
	if !it.Amount.Equal(first) {
		t.Fatalf("recompute changed amount: %s -> %s", first.String(), it.Amount.String())
	}
	if !it.Amount.Equal(RoundCurrency(it.Rate.Mul(it.Qty), cfg.CurrencyPrecision)) {
		t.Fatalf("amount %s does not equal rounded rate*qty", it.Amount.String())
	}
}

func TestApplyQuantityDelta_ClampsAtZero(t *testing.T) {
	cfg := DefaultConfig()
	it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("100"), cfg)

	if remove := it.ApplyQuantityDelta(dec("2"), cfg); remove {
		t.Fatal("qty 3 should not signal removal")
	}
	if remove := it.ApplyQuantityDelta(dec("-5"), cfg); !remove {
		t.Fatal("clamped-to-zero qty should signal removal")
	}
	if !it.Qty.IsZero() {
		t.Fatalf("expected qty 0, got %s", it.Qty.String())
	}
	if !it.Amount.IsZero() {
		t.Fatalf("expected amount 0, got %s", it.Amount.String())
	}
}

func TestSetQuantity_AllowsNegativeForReturns(t *testing.T) {
	cfg := DefaultConfig()
	it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("90"), cfg)
	it.SetQuantity(dec("-2"), cfg)
	if !it.Amount.Equal(dec("-180")) {
		t.Fatalf("expected amount -180, got %s", it.Amount.String())
	}
}

func TestDiscountRoundTrip_WithinRoundingTolerance(t *testing.T) {
	cfg := DefaultConfig()
	for _, p := range []string{"0", "5", "12.5", "33.33", "99"} {
		it := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("77.77"), cfg)
		it.SetDiscountPercent(dec(p), cfg)
		rate := it.Rate

		other := NewLineItem("ITM-001", "Test Item", "Products", "Nos", dec("77.77"), cfg)
		other.SetEffectiveRate(rate, cfg)

		diff := other.DiscountPercent.Sub(dec(p)).Abs()
		if diff.GreaterThan(decimal.NewFromFloat(0.05)) {
			t.Fatalf("round trip of %s%% drifted to %s%%", p, other.DiscountPercent.String())
		}
	}
}
