package cart

import "github.com/shopspring/decimal"

// ConfirmedInvoice is the server-authoritative copy returned by the ERP
// after a recalculation round-trip. It is a distinct type from the
// editable draft on purpose: the two are reconciled only through
// MergeConfirmed, never by ad hoc field copying.
type ConfirmedInvoice struct {
	Name      string          `json:"name"`
	DocStatus int             `json:"docstatus"`
	IsReturn  bool            `json:"is_return"`
	Items     []ConfirmedItem `json:"items"`
	Payments  []PaymentLine   `json:"payments"`

	ItemTotal                decimal.Decimal `json:"total"`
	AdditionalDiscountAmount decimal.Decimal `json:"discount_amount"`
	NetTotal                 decimal.Decimal `json:"net_total"`
	TaxAmount                decimal.Decimal `json:"total_taxes_and_charges"`
	GrandTotal               decimal.Decimal `json:"grand_total"`
	RoundedTotal             decimal.Decimal `json:"rounded_total"`
}

type ConfirmedItem struct {
	ItemCode        string          `json:"item_code"`
	ItemName        string          `json:"item_name"`
	UOM             string          `json:"uom"`
	Qty             decimal.Decimal `json:"qty"`
	ListRate        decimal.Decimal `json:"price_list_rate"`
	Rate            decimal.Decimal `json:"rate"`
	DiscountPercent decimal.Decimal `json:"discount_percentage"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Amount          decimal.Decimal `json:"amount"`
}

// MergeConfirmed folds the authoritative copy into the draft. Server
// values win for everything it computes; display-only fields the server
// response may omit (list rate, item name, group, UOM) keep their local
// values. Lines the server dropped disappear; lines it added appear.
func MergeConfirmed(d *DraftInvoice, c *ConfirmedInvoice, cfg Config) {
	d.Name = c.Name
	d.IsReturn = c.IsReturn

	local := make(map[string]*LineItem, len(d.Items))
	for _, it := range d.Items {
		local[it.ItemCode] = it
	}

	merged := make([]*LineItem, 0, len(c.Items))
	for _, ci := range c.Items {
		it := local[ci.ItemCode]
		if it == nil {
			it = &LineItem{ItemCode: ci.ItemCode}
		}
		it.Qty = ci.Qty
		it.Rate = ci.Rate
		it.DiscountPercent = ci.DiscountPercent
		it.DiscountAmount = ci.DiscountAmount
		it.Amount = ci.Amount
		if !ci.ListRate.IsZero() {
			it.ListRate = ci.ListRate
		}
		if ci.ItemName != "" {
			it.ItemName = ci.ItemName
		}
		if ci.UOM != "" {
			it.UOM = ci.UOM
		}
		merged = append(merged, it)
	}
	d.Items = merged

	if len(c.Payments) > 0 {
		payments := make([]*PaymentLine, 0, len(c.Payments))
		for i := range c.Payments {
			p := c.Payments[i]
			if p.Idx == 0 {
				p.Idx = i + 1
			}
			payments = append(payments, &p)
		}
		d.Payments = payments
	}

	t := &d.Totals
	t.TotalQty = decimal.Zero
	t.ItemDiscountTotal = decimal.Zero
	for _, it := range d.Items {
		t.TotalQty = t.TotalQty.Add(it.Qty)
		t.ItemDiscountTotal = t.ItemDiscountTotal.Add(it.DiscountAmount)
	}
	t.ItemTotal = c.ItemTotal
	t.AdditionalDiscountAmount = c.AdditionalDiscountAmount
	t.NetTotal = c.NetTotal
	t.TaxAmount = c.TaxAmount
	t.GrandTotal = c.GrandTotal
	if !c.RoundedTotal.IsZero() {
		t.RoundedTotal = c.RoundedTotal
	} else {
		t.RoundedTotal = RoundToNearest(c.GrandTotal, cfg.CashDenomination)
	}
}
