package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type OfferKind string

const (
	OfferKindGrandTotal  OfferKind = "Grand Total"
	OfferKindGiveProduct OfferKind = "Give Product"
)

type OfferScope string

const (
	OfferScopeItemCode      OfferScope = "Item Code"
	OfferScopeItemGroup     OfferScope = "Item Group"
	OfferScopeCustomer      OfferScope = "Customer"
	OfferScopeCustomerGroup OfferScope = "Customer Group"
	OfferScopeTransaction   OfferScope = "Transaction"
)

type OfferStatus string

const (
	OfferIneligible OfferStatus = "ineligible"
	OfferEligible   OfferStatus = "eligible"
	OfferApplied    OfferStatus = "applied"
)

// Offer is a candidate promotion from the catalog. Name is the identity.
// At most one grand-total offer may be applied at a time.
type Offer struct {
	Name            string          `json:"name"`
	Kind            OfferKind       `json:"offer"`
	DiscountPercent decimal.Decimal `json:"discount_percentage"`
	Scope           OfferScope      `json:"apply_on"`
	ApplyItemCode   string          `json:"apply_item_code"`
	ApplyItemGroup  string          `json:"apply_item_group"`
	Customer        string          `json:"customer"`
	CustomerGroup   string          `json:"customer_group"`
	MinQty          decimal.Decimal `json:"min_qty"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	GiveItemCode    string          `json:"give_item"`
	AutoApply       bool            `json:"auto"`

	Eligible bool `json:"eligible"`
	Applied  bool `json:"offer_applied"`
}

func (o *Offer) Status() OfferStatus {
	switch {
	case !o.Eligible:
		return OfferIneligible
	case o.Applied:
		return OfferApplied
	default:
		return OfferEligible
	}
}

// Disabled reports whether the offer cannot transition to applied:
// a give-product offer whose target item is unresolved.
func (o *Offer) Disabled() bool {
	return o.Kind == OfferKindGiveProduct && o.GiveItemCode == ""
}

// eligibleFor evaluates the applicability predicate against the draft:
// scope match first, then min-qty/min-amount thresholds over the matched
// lines (the whole cart for customer/transaction scopes).
func (o *Offer) eligibleFor(d *DraftInvoice) bool {
	var matchedQty, matchedAmount decimal.Decimal
	matched := false

	switch o.Scope {
	case OfferScopeItemCode:
		for _, it := range d.Items {
			if it.ItemCode == o.ApplyItemCode {
				matched = true
				matchedQty = matchedQty.Add(it.Qty)
				matchedAmount = matchedAmount.Add(it.Amount)
			}
		}
	case OfferScopeItemGroup:
		for _, it := range d.Items {
			if it.ItemGroup == o.ApplyItemGroup {
				matched = true
				matchedQty = matchedQty.Add(it.Qty)
				matchedAmount = matchedAmount.Add(it.Amount)
			}
		}
	case OfferScopeCustomer:
		matched = d.Customer != "" && d.Customer == o.Customer
		matchedQty = d.Totals.TotalQty
		matchedAmount = d.Totals.ItemTotal
	case OfferScopeCustomerGroup:
		matched = d.CustomerGroup != "" && d.CustomerGroup == o.CustomerGroup
		matchedQty = d.Totals.TotalQty
		matchedAmount = d.Totals.ItemTotal
	default: // Transaction: unconditional
		matched = true
		matchedQty = d.Totals.TotalQty
		matchedAmount = d.Totals.ItemTotal
	}

	if !matched {
		return false
	}
	if o.MinQty.IsPositive() && matchedQty.LessThan(o.MinQty) {
		return false
	}
	if o.MinAmount.IsPositive() && matchedAmount.LessThan(o.MinAmount) {
		return false
	}
	return true
}

// InitCatalog marks eligibility on a freshly loaded catalog and
// transitions auto-apply offers straight to applied. Runs once per load;
// later refreshes must not re-apply an offer the user removed.
func InitCatalog(offers []*Offer, d *DraftInvoice) {
	for _, o := range offers {
		o.Eligible = o.eligibleFor(d)
		o.Applied = o.AutoApply && o.Eligible && !o.Disabled()
	}
}

// RefreshEligibility re-evaluates every offer against the draft. Offers
// that turn ineligible are un-applied; applied state is otherwise left
// to the user.
func RefreshEligibility(offers []*Offer, d *DraftInvoice) {
	for _, o := range offers {
		o.Eligible = o.eligibleFor(d)
		if !o.Eligible {
			o.Applied = false
		}
	}
}

// ResolveExclusivity enforces the single-grand-total invariant: among
// applied grand-total offers the numerically highest discount wins, ties
// keep the first in catalog order, all others are forced back to
// eligible-unapplied. Returns the winner (nil when none applied).
func ResolveExclusivity(offers []*Offer) *Offer {
	var winner *Offer
	for _, o := range offers {
		if o.Kind != OfferKindGrandTotal || !o.Applied {
			continue
		}
		if winner == nil || o.DiscountPercent.GreaterThan(winner.DiscountPercent) {
			winner = o
		}
	}
	if winner == nil {
		return nil
	}
	for _, o := range offers {
		if o.Kind == OfferKindGrandTotal && o.Applied && o != winner {
			o.Applied = false
		}
	}
	return winner
}

// ApplyOffers runs the full pipeline: eligibility, exclusivity, then the
// output contract: AdditionalDiscountPercent is the winning grand-total
// offer's percent, or zero when none is applied.
func ApplyOffers(offers []*Offer, d *DraftInvoice, cfg Config) []Notice {
	var notices []Notice

	RefreshEligibility(offers, d)

	applied := 0
	for _, o := range offers {
		if o.Kind == OfferKindGrandTotal && o.Applied {
			applied++
		}
	}

	winner := ResolveExclusivity(offers)
	if winner != nil {
		d.AppliedOfferName = winner.Name
		if applied > 1 {
			notices = append(notices, Notice{
				Code: NoticeBestOfferApplied,
				Text: fmt.Sprintf("Best offer applied: %s", winner.Name),
			})
		}
		if n := d.SetAdditionalDiscountPercent(winner.DiscountPercent, cfg); n != nil {
			notices = append(notices, *n)
		}
	} else {
		d.AppliedOfferName = ""
		d.SetAdditionalDiscountPercent(decimal.Zero, cfg)
	}
	return notices
}

// ToggleOffer flips a single offer by name and re-runs the pipeline.
// Disabled and ineligible offers cannot be applied. Applying a second
// grand-total offer auto-removes the previously applied one.
func ToggleOffer(offers []*Offer, name string, d *DraftInvoice, cfg Config) []Notice {
	for _, o := range offers {
		if o.Name != name {
			continue
		}
		if o.Applied {
			o.Applied = false
		} else if o.Eligible && !o.Disabled() {
			if o.Kind == OfferKindGrandTotal {
				for _, other := range offers {
					if other.Kind == OfferKindGrandTotal && other != o {
						other.Applied = false
					}
				}
			}
			o.Applied = true
		}
		break
	}
	return ApplyOffers(offers, d, cfg)
}
