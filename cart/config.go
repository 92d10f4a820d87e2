package cart

import "github.com/shopspring/decimal"

// Config carries the POS profile knobs the calculations depend on.
// Zero-value percent limits mean "no limit" (100).
type Config struct {
	CurrencyPrecision         int32           `json:"currency_precision"`
	QtyPrecision              int32           `json:"qty_precision"`
	CashDenomination          decimal.Decimal `json:"cash_denomination"`
	MaxItemDiscountPercent    decimal.Decimal `json:"max_item_discount_percent"`
	MaxInvoiceDiscountPercent decimal.Decimal `json:"max_invoice_discount_percent"`
	TaxEnabled                bool            `json:"tax_enabled"`
	TaxPercent                decimal.Decimal `json:"tax_percent"`
	IsTaxInclusive            bool            `json:"is_tax_inclusive"`
	PaymentTolerance          decimal.Decimal `json:"payment_tolerance"`
}

func DefaultConfig() Config {
	return Config{
		CurrencyPrecision:         2,
		QtyPrecision:              2,
		CashDenomination:          decimal.NewFromFloat(0.5),
		MaxItemDiscountPercent:    oneHundred,
		MaxInvoiceDiscountPercent: oneHundred,
		PaymentTolerance:          decimal.NewFromFloat(0.05),
	}
}

func (c Config) maxItemDiscount() decimal.Decimal {
	if c.MaxItemDiscountPercent.LessThanOrEqual(decimal.Zero) {
		return oneHundred
	}
	return decimal.Min(c.MaxItemDiscountPercent, oneHundred)
}

func (c Config) maxInvoiceDiscount() decimal.Decimal {
	if c.MaxInvoiceDiscountPercent.LessThanOrEqual(decimal.Zero) {
		return oneHundred
	}
	return decimal.Min(c.MaxInvoiceDiscountPercent, oneHundred)
}

func (c Config) tolerance() decimal.Decimal {
	if c.PaymentTolerance.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromFloat(0.05)
	}
	return c.PaymentTolerance
}
