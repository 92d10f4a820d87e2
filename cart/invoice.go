package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DraftInvoice is the user-editable local cart. The authoritative copy
// lives on the ERP server; this draft is recomputed in full after every
// mutation (cart sizes are small, correctness beats caching).
type DraftInvoice struct {
	Name                      string          `json:"name"`
	Customer                  string          `json:"customer"`
	CustomerGroup             string          `json:"customer_group"`
	IsReturn                  bool            `json:"is_return"`
	ReturnAgainst             string          `json:"return_against"`
	Items                     []*LineItem     `json:"items"`
	AdditionalDiscountPercent decimal.Decimal `json:"additional_discount_percentage"`
	AppliedOfferName          string          `json:"applied_offer_name"`
	Payments                  []*PaymentLine  `json:"payments"`

	Totals Totals `json:"totals"`
}

// Totals are derived on every Recalculate and never edited directly.
type Totals struct {
	TotalQty                 decimal.Decimal `json:"total_qty"`
	ItemTotal                decimal.Decimal `json:"total"`
	ItemDiscountTotal        decimal.Decimal `json:"item_discount_total"`
	AdditionalDiscountAmount decimal.Decimal `json:"discount_amount"`
	NetTotal                 decimal.Decimal `json:"net_total"`
	TaxAmount                decimal.Decimal `json:"total_taxes_and_charges"`
	GrandTotal               decimal.Decimal `json:"grand_total"`
	RoundedTotal             decimal.Decimal `json:"rounded_total"`
}

func NewDraftInvoice(customer string, customerGroup string) *DraftInvoice {
	return &DraftInvoice{
		Customer:      customer,
		CustomerGroup: customerGroup,
	}
}

// FindItem returns the line for itemCode, or nil.
func (d *DraftInvoice) FindItem(itemCode string) *LineItem {
	for _, it := range d.Items {
		if it.ItemCode == itemCode {
			return it
		}
	}
	return nil
}

// AddItem merges into an existing line (quantity +1) or appends a fresh
// line at quantity 1, then recomputes totals.
func (d *DraftInvoice) AddItem(itemCode string, itemName string, itemGroup string, uom string, listRate decimal.Decimal, cfg Config) *LineItem {
	if existing := d.FindItem(itemCode); existing != nil {
		existing.ApplyQuantityDelta(decimal.NewFromInt(1), cfg)
		d.Recalculate(cfg)
		return existing
	}
	it := NewLineItem(itemCode, itemName, itemGroup, uom, listRate, cfg)
	d.Items = append(d.Items, it)
	d.Recalculate(cfg)
	return it
}

// RemoveItem deletes the line for itemCode and recomputes totals.
func (d *DraftInvoice) RemoveItem(itemCode string, cfg Config) {
	items := d.Items[:0]
	for _, it := range d.Items {
		if it.ItemCode != itemCode {
			items = append(items, it)
		}
	}
	d.Items = items
	d.Recalculate(cfg)
}

// SetAdditionalDiscountPercent clamps the invoice-level discount into
// [0, maxInvoiceDiscount] and recomputes totals.
func (d *DraftInvoice) SetAdditionalDiscountPercent(requested decimal.Decimal, cfg Config) *Notice {
	var notice *Notice

	percent := requested
	if percent.IsNegative() {
		percent = decimal.Zero
		notice = newNotice(NoticeNegativeInputClamped, "Discount cannot be negative")
	}
	maxDiscount := cfg.maxInvoiceDiscount()
	if percent.GreaterThan(maxDiscount) {
		percent = maxDiscount
		notice = newNotice(NoticeMaxDiscountApplied, fmt.Sprintf("Maximum invoice discount is %s%%", maxDiscount.String()))
	}
	d.AdditionalDiscountPercent = percent
	d.Recalculate(cfg)
	return notice
}

// EnforceDiscountLimits re-runs every discount-bearing field through its
// clamping setter. Drafts arriving over the wire carry client-asserted
// rates and percents; this pins them back inside the profile's limits
// before totals feed the payment gate. Ends with a full Recalculate.
func (d *DraftInvoice) EnforceDiscountLimits(cfg Config) []Notice {
	var notices []Notice
	for _, it := range d.Items {
		// Without a list rate there is no band to clamp against.
		if !it.ListRate.IsPositive() {
			continue
		}
		if n := it.SetEffectiveRate(it.Rate, cfg); n != nil {
			notices = append(notices, *n)
		}
	}
	if n := d.SetAdditionalDiscountPercent(d.AdditionalDiscountPercent, cfg); n != nil {
		notices = append(notices, *n)
	}
	return notices
}

// Recalculate re-derives every total from the line items. Return-invoice
// sign is a precondition: quantities (and therefore line amounts) must
// already be negative before aggregation runs; no sign flip happens here.
func (d *DraftInvoice) Recalculate(cfg Config) {
	var itemTotal, totalQty, itemDiscountTotal decimal.Decimal

	for _, it := range d.Items {
		it.refresh(cfg)
		itemTotal = itemTotal.Add(it.Amount)
		totalQty = totalQty.Add(it.Qty)
		itemDiscountTotal = itemDiscountTotal.Add(it.DiscountAmount)
	}

	t := &d.Totals
	t.TotalQty = totalQty
	t.ItemTotal = RoundCurrency(itemTotal, cfg.CurrencyPrecision)
	t.ItemDiscountTotal = RoundCurrency(itemDiscountTotal, cfg.CurrencyPrecision)

	t.AdditionalDiscountAmount = RoundCurrency(
		t.ItemTotal.Mul(d.AdditionalDiscountPercent).Div(oneHundred),
		cfg.CurrencyPrecision,
	)
	t.NetTotal = RoundCurrency(t.ItemTotal.Sub(t.AdditionalDiscountAmount), cfg.CurrencyPrecision)

	switch {
	case cfg.TaxEnabled && cfg.TaxPercent.IsPositive() && cfg.IsTaxInclusive:
		// Tax-inclusive: carved out of net, not added on top.
		t.TaxAmount = RoundCurrency(
			t.NetTotal.DivRound(cfg.TaxPercent.Add(oneHundred), 4).Mul(cfg.TaxPercent),
			cfg.CurrencyPrecision,
		)
		t.GrandTotal = t.NetTotal
	case cfg.TaxEnabled && cfg.TaxPercent.IsPositive():
		t.TaxAmount = RoundCurrency(
			t.NetTotal.DivRound(oneHundred, 4).Mul(cfg.TaxPercent),
			cfg.CurrencyPrecision,
		)
		t.GrandTotal = RoundCurrency(t.NetTotal.Add(t.TaxAmount), cfg.CurrencyPrecision)
	default:
		t.TaxAmount = decimal.Zero
		t.GrandTotal = t.NetTotal
	}

	t.RoundedTotal = RoundToNearest(t.GrandTotal, cfg.CashDenomination)
}

// NegateForReturn flips every quantity negative and recomputes. The
// aggregation applies no sign handling of its own, so this is the single
// place return sign correctness is established (double-negation and
// missed-negation are the classic bugs here: Abs first, then Neg).
func (d *DraftInvoice) NegateForReturn(cfg Config) {
	d.IsReturn = true
	for _, it := range d.Items {
		it.Qty = it.Qty.Abs().Neg()
	}
	d.Recalculate(cfg)
}
