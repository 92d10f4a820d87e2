package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is one product row in the cart. ItemCode is the identity key
// within an invoice. Rate is the effective (discounted) unit price;
// ListRate is the undiscounted price list rate. Exactly one of
// {rate edit, discount% edit} is authoritative at a time; the other field
// is recomputed from it.
type LineItem struct {
	ItemCode        string          `json:"item_code"`
	ItemName        string          `json:"item_name"`
	ItemGroup       string          `json:"item_group"`
	UOM             string          `json:"uom"`
	Qty             decimal.Decimal `json:"qty"`
	ListRate        decimal.Decimal `json:"price_list_rate"`
	Rate            decimal.Decimal `json:"rate"`
	DiscountPercent decimal.Decimal `json:"discount_percentage"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Amount          decimal.Decimal `json:"amount"`
}

// NewLineItem starts a line at quantity 1 with no discount.
func NewLineItem(itemCode string, itemName string, itemGroup string, uom string, listRate decimal.Decimal, cfg Config) *LineItem {
	it := &LineItem{
		ItemCode:  itemCode,
		ItemName:  itemName,
		ItemGroup: itemGroup,
		UOM:       uom,
		Qty:       decimal.NewFromInt(1),
		ListRate:  listRate,
		Rate:      listRate,
	}
	it.refresh(cfg)
	return it
}

// ApplyQuantityDelta adjusts quantity by delta, clamped at zero.
// Returns true when the resulting quantity is exactly zero: the caller
// should remove the line rather than keep a zero-qty row.
func (it *LineItem) ApplyQuantityDelta(delta decimal.Decimal, cfg Config) bool {
	qty := it.Qty.Add(delta)
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	it.Qty = RoundQuantity(qty, cfg.QtyPrecision)
	it.refresh(cfg)
	return it.Qty.IsZero()
}

// SetQuantity sets an absolute keyed-in quantity. Negative quantities are
// allowed: return invoices carry negated quantities.
func (it *LineItem) SetQuantity(qty decimal.Decimal, cfg Config) {
	it.Qty = RoundQuantity(qty, cfg.QtyPrecision)
	it.refresh(cfg)
}

// SetEffectiveRate applies a user-entered unit price. The rate is clamped
// into [0, listRate]; the discount percent is derived from the price
// difference, and if it exceeds the configured maximum the rate is
// re-derived from the maximum instead (discount wins precedence).
func (it *LineItem) SetEffectiveRate(requested decimal.Decimal, cfg Config) *Notice {
	var notice *Notice

	rate := requested
	if rate.IsNegative() {
		rate = decimal.Zero
		notice = newNotice(NoticeNegativeInputClamped, "Price cannot be negative")
	}

	listRate := it.ListRate
	if rate.GreaterThan(listRate) {
		rate = listRate
		notice = newNotice(NoticePriceExceedsLimit, "Price exceeds limit")
	}

	percent := decimal.Zero
	if listRate.IsPositive() {
		percent = listRate.Sub(rate).Mul(oneHundred).Div(listRate)
	}

	maxDiscount := cfg.maxItemDiscount()
	if percent.GreaterThan(maxDiscount) {
		maxAmount := listRate.Mul(maxDiscount).DivRound(oneHundred, 4)
		rate = RoundCurrency(listRate.Sub(maxAmount), cfg.CurrencyPrecision)
		percent = maxDiscount
		notice = newNotice(NoticeMaxDiscountApplied, fmt.Sprintf("Maximum discount applied: %s%%", maxDiscount.String()))
	}

	it.Rate = RoundCurrency(rate, cfg.CurrencyPrecision)
	it.DiscountPercent = percent.RoundBank(2)
	it.refresh(cfg)
	return notice
}

// SetDiscountPercent applies a user-entered discount percent, clamped to
// [0, min(100, maxDiscount)], and derives the effective rate from the
// list rate.
func (it *LineItem) SetDiscountPercent(requested decimal.Decimal, cfg Config) *Notice {
	var notice *Notice

	percent := requested
	if percent.IsNegative() {
		percent = decimal.Zero
		notice = newNotice(NoticeNegativeInputClamped, "Discount cannot be negative")
	}
	maxDiscount := cfg.maxItemDiscount()
	if percent.GreaterThan(maxDiscount) {
		percent = maxDiscount
		notice = newNotice(NoticeMaxDiscountApplied, fmt.Sprintf("Maximum discount applied: %s%%", maxDiscount.String()))
	}

	it.DiscountPercent = percent
	listRate := it.ListRate
	if listRate.IsPositive() {
		if percent.IsPositive() {
			discountAmount := listRate.Mul(percent).DivRound(oneHundred, 4)
			it.Rate = RoundCurrency(listRate.Sub(discountAmount), cfg.CurrencyPrecision)
		} else {
			it.Rate = listRate
		}
	}
	it.refresh(cfg)
	return notice
}

// refresh recomputes the derived amounts. Amount is the only value that
// feeds the invoice total; DiscountAmount is informational (already
// reflected in Amount through the effective rate).
func (it *LineItem) refresh(cfg Config) {
	it.Amount = RoundCurrency(it.Rate.Mul(it.Qty), cfg.CurrencyPrecision)
	it.DiscountAmount = RoundCurrency(
		it.ListRate.Mul(it.Qty).Mul(it.DiscountPercent).Div(oneHundred),
		cfg.CurrencyPrecision,
	)
}
