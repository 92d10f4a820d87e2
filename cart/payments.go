package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentLine is one tender entry. Idx is 1-based and stable within the
// invoice; Amount carries the invoice's sign (negative on returns).
type PaymentLine struct {
	Idx       int             `json:"idx"`
	Mode      string          `json:"mode_of_payment"`
	Amount    decimal.Decimal `json:"amount"`
	IsDefault bool            `json:"default"`
}

// PaymentMismatchError blocks submission when the tender sum differs from
// the target beyond tolerance. Local state stays intact for correction.
type PaymentMismatchError struct {
	Paid   decimal.Decimal
	Target decimal.Decimal
}

func (e *PaymentMismatchError) Error() string {
	return fmt.Sprintf("payment mismatch: total %s vs target %s", e.Paid.String(), e.Target.String())
}

// PaymentTarget is the amount tenders must sum to: the rounded total when
// present, otherwise the grand total.
func (d *DraftInvoice) PaymentTarget() decimal.Decimal {
	if !d.Totals.RoundedTotal.IsZero() {
		return d.Totals.RoundedTotal
	}
	return d.Totals.GrandTotal
}

// DefaultPayment returns the line flagged default, falling back to the
// first line. Ensures exactly one default exists when lines are present.
func (d *DraftInvoice) DefaultPayment() *PaymentLine {
	if len(d.Payments) == 0 {
		return nil
	}
	for _, p := range d.Payments {
		if p.IsDefault {
			return p
		}
	}
	d.Payments[0].IsDefault = true
	return d.Payments[0]
}

// SeedPayments installs a fresh tender list: indexes assigned, all
// amounts zeroed, then the full (sign-adjusted) target on the default
// line. Non-return invoices get the positive target; returns get the
// negated absolute.
func (d *DraftInvoice) SeedPayments(modes []PaymentLine, cfg Config) {
	d.Payments = make([]*PaymentLine, 0, len(modes))
	for i := range modes {
		p := modes[i]
		p.Idx = i + 1
		p.Amount = decimal.Zero
		d.Payments = append(d.Payments, &p)
	}

	def := d.DefaultPayment()
	if def == nil {
		return
	}
	target := RoundCurrency(d.PaymentTarget(), cfg.CurrencyPrecision)
	if d.IsReturn {
		def.Amount = target.Abs().Neg()
	} else {
		def.Amount = target
	}
}

func (d *DraftInvoice) findPayment(idx int) *PaymentLine {
	for _, p := range d.Payments {
		if p.Idx == idx {
			return p
		}
	}
	return nil
}

// SetFullAmount zeroes every line and puts the whole (sign-adjusted)
// target on the chosen one.
func (d *DraftInvoice) SetFullAmount(idx int, cfg Config) {
	for _, p := range d.Payments {
		p.Amount = decimal.Zero
	}
	p := d.findPayment(idx)
	if p == nil {
		return
	}
	target := RoundCurrency(d.PaymentTarget(), cfg.CurrencyPrecision)
	if d.IsReturn {
		p.Amount = target.Abs().Neg()
	} else {
		p.Amount = target
	}
}

// SetRestAmount assigns the remainder (target minus the other lines) to
// the chosen line. Only applies when that line is exactly zero, so a
// manually entered value is never clobbered. A negative remainder is
// assigned as-is: the line absorbs the overpayment as change.
func (d *DraftInvoice) SetRestAmount(idx int, cfg Config) {
	p := d.findPayment(idx)
	if p == nil || !p.Amount.IsZero() {
		return
	}

	paid := decimal.Zero
	for _, line := range d.Payments {
		paid = paid.Add(line.Amount)
	}
	remaining := RoundCurrency(d.PaymentTarget().Sub(paid), cfg.CurrencyPrecision)
	if remaining.IsZero() {
		return
	}
	if d.IsReturn && remaining.IsPositive() {
		remaining = remaining.Neg()
	}
	p.Amount = remaining
}

// ClearPaymentAmounts zeroes all tender lines.
func (d *DraftInvoice) ClearPaymentAmounts() {
	for _, p := range d.Payments {
		p.Amount = decimal.Zero
	}
}

// SelectReturnPayment routes the whole (negative) return total through
// one line, zeroing all others. idx < 1 falls back to the first line.
func (d *DraftInvoice) SelectReturnPayment(idx int, cfg Config) {
	if len(d.Payments) == 0 {
		return
	}
	target := RoundCurrency(d.PaymentTarget(), cfg.CurrencyPrecision).Abs().Neg()
	chosen := d.findPayment(idx)
	if chosen == nil {
		chosen = d.Payments[0]
	}
	for _, p := range d.Payments {
		p.Amount = decimal.Zero
	}
	chosen.Amount = target
}

// PaidTotal sums all tender lines.
func (d *DraftInvoice) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// AbsorbRoundingDrift folds a nonzero within-tolerance difference between
// the tender sum and the target into the default line. Item-level and
// invoice-level rounding can legitimately disagree by a minor unit; that
// is rounding noise, not a user error.
func (d *DraftInvoice) AbsorbRoundingDrift(cfg Config) {
	def := d.DefaultPayment()
	if def == nil {
		return
	}
	diff := d.PaymentTarget().Sub(d.PaidTotal())
	if diff.IsZero() || diff.Abs().GreaterThan(cfg.tolerance()) {
		return
	}
	def.Amount = RoundCurrency(def.Amount.Add(diff), cfg.CurrencyPrecision)
}

// ValidatePayments is the submission gate: beyond-tolerance mismatches are
// real input errors and block submission rather than being auto-corrected.
func (d *DraftInvoice) ValidatePayments(cfg Config) error {
	paid := d.PaidTotal()
	target := d.PaymentTarget()
	if paid.Sub(target).Abs().GreaterThan(cfg.tolerance()) {
		return &PaymentMismatchError{Paid: paid, Target: target}
	}
	return nil
}
