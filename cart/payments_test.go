package cart

import (
	"errors"
	"testing"
)

func taxedCart(cfg Config) *DraftInvoice {
	d := buildDiscountedCart(cfg)
	d.SetAdditionalDiscountPercent(dec("5"), cfg)
	return d
}

func twoTenderModes() []PaymentLine {
	return []PaymentLine{
		{Mode: "Cash", IsDefault: true},
		{Mode: "Credit Card"},
	}
}

func TestSeedPayments_FullTargetOnDefaultLine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaxEnabled = true
	cfg.TaxPercent = dec("15")
	cfg.CashDenomination = dec("0.01")

	d := taxedCart(cfg)
	d.SeedPayments(twoTenderModes(), cfg)

	if len(d.Payments) != 2 {
		t.Fatalf("expected 2 payment lines, got %d", len(d.Payments))
	}
	if d.Payments[0].Idx != 1 || d.Payments[1].Idx != 2 {
		t.Fatalf("expected idx 1,2 got %d,%d", d.Payments[0].Idx, d.Payments[1].Idx)
	}
	if !d.Payments[0].Amount.Equal(dec("196.65")) {
		t.Fatalf("expected default line 196.65, got %s", d.Payments[0].Amount.String())
	}
	if !d.Payments[1].Amount.IsZero() {
		t.Fatalf("expected non-default line 0, got %s", d.Payments[1].Amount.String())
	}
	if err := d.ValidatePayments(cfg); err != nil {
		t.Fatalf("seeded payments should validate: %v", err)
	}
}

func TestSetRestAmount_AssignsRemainderToUntouchedLine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaxEnabled = true
	cfg.TaxPercent = dec("15")
	cfg.CashDenomination = dec("0.01")

	d := taxedCart(cfg)
	d.SeedPayments(twoTenderModes(), cfg)
	d.ClearPaymentAmounts()
	d.Payments[0].Amount = dec("100")

	d.SetRestAmount(2, cfg)
	if !d.Payments[1].Amount.Equal(dec("96.65")) {
		t.Fatalf("expected rest 96.65, got %s", d.Payments[1].Amount.String())
	}
	if err := d.ValidatePayments(cfg); err != nil {
		t.Fatalf("split payments should validate: %v", err)
	}
}

func TestSetRestAmount_NeverClobbersManualEntry(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	d.SeedPayments(twoTenderModes(), cfg)
	d.ClearPaymentAmounts()
	d.Payments[1].Amount = dec("50")

	d.SetRestAmount(2, cfg)
	if !d.Payments[1].Amount.Equal(dec("50")) {
		t.Fatalf("manual amount clobbered: %s", d.Payments[1].Amount.String())
	}
}

func TestSetRestAmount_OverpaymentAssignedAsChange(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg) // target 180
	d.SeedPayments(twoTenderModes(), cfg)
	d.ClearPaymentAmounts()
	d.Payments[0].Amount = dec("200")

	d.SetRestAmount(2, cfg)
	if !d.Payments[1].Amount.Equal(dec("-20")) {
		t.Fatalf("expected -20 change line, got %s", d.Payments[1].Amount.String())
	}
}

func TestSetFullAmount_ZeroesOthers(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	d.SeedPayments(twoTenderModes(), cfg)

	d.SetFullAmount(2, cfg)
	if !d.Payments[0].Amount.IsZero() {
		t.Fatalf("expected line 1 zeroed, got %s", d.Payments[0].Amount.String())
	}
	if !d.Payments[1].Amount.Equal(dec("180")) {
		t.Fatalf("expected full 180 on line 2, got %s", d.Payments[1].Amount.String())
	}
}

func TestReturnInvoice_SinglePaymentAutoNegated(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	d.NegateForReturn(cfg)
	d.SeedPayments([]PaymentLine{{Mode: "Cash", IsDefault: true}}, cfg)

	if !d.Payments[0].Amount.Equal(dec("-180")) {
		t.Fatalf("expected return payment -180, got %s", d.Payments[0].Amount.String())
	}
	if err := d.ValidatePayments(cfg); err != nil {
		t.Fatalf("return payments should validate: %v", err)
	}
}

func TestSelectReturnPayment_RoutesWholeTotalThroughChosenLine(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	d.NegateForReturn(cfg)
	d.SeedPayments(twoTenderModes(), cfg)

	d.SelectReturnPayment(2, cfg)
	if !d.Payments[0].Amount.IsZero() {
		t.Fatalf("expected line 1 zeroed, got %s", d.Payments[0].Amount.String())
	}
	if !d.Payments[1].Amount.Equal(dec("-180")) {
		t.Fatalf("expected -180 on line 2, got %s", d.Payments[1].Amount.String())
	}

	// Out-of-range idx falls back to the first line.
	d.SelectReturnPayment(0, cfg)
	if !d.Payments[0].Amount.Equal(dec("-180")) {
		t.Fatalf("expected fallback to line 1, got %s", d.Payments[0].Amount.String())
	}
}

func TestValidatePayments_ToleranceGate(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg) // target 180
	d.SeedPayments(twoTenderModes(), cfg)

	cases := []struct {
		amount string
		ok     bool
	}{
		{"180", true},
		{"180.05", true},
		{"179.95", true},
		{"180.06", false},
		{"179.80", false},
		{"0", false},
	}
	for _, tc := range cases {
		d.ClearPaymentAmounts()
		d.Payments[0].Amount = dec(tc.amount)
		err := d.ValidatePayments(cfg)
		if tc.ok && err != nil {
			t.Fatalf("paid %s should pass: %v", tc.amount, err)
		}
		if !tc.ok {
			var mismatch *PaymentMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("paid %s expected PaymentMismatchError, got %v", tc.amount, err)
			}
			if !mismatch.Target.Equal(dec("180")) {
				t.Fatalf("mismatch target expected 180, got %s", mismatch.Target.String())
			}
		}
	}
}

func TestAbsorbRoundingDrift_FoldsMinorDiffIntoDefault(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	d.SeedPayments(twoTenderModes(), cfg)
	d.Payments[0].Amount = dec("179.96")

	d.AbsorbRoundingDrift(cfg)
	if !d.Payments[0].Amount.Equal(dec("180")) {
		t.Fatalf("expected drift absorbed to 180, got %s", d.Payments[0].Amount.String())
	}

	// Beyond-tolerance differences are left alone for the validation gate.
	d.Payments[0].Amount = dec("170")
	d.AbsorbRoundingDrift(cfg)
	if !d.Payments[0].Amount.Equal(dec("170")) {
		t.Fatalf("beyond-tolerance diff must not be absorbed, got %s", d.Payments[0].Amount.String())
	}
}
