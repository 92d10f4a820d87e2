package cart

import "testing"

func offerCatalog() []*Offer {
	return []*Offer{
		{Name: "OFR-0001", Kind: OfferKindGrandTotal, Scope: OfferScopeTransaction, DiscountPercent: dec("5")},
		{Name: "OFR-0002", Kind: OfferKindGrandTotal, Scope: OfferScopeTransaction, DiscountPercent: dec("15")},
		{Name: "OFR-0003", Kind: OfferKindGrandTotal, Scope: OfferScopeTransaction, DiscountPercent: dec("10")},
	}
}

func TestResolveExclusivity_HighestDiscountWins(t *testing.T) {
	offers := offerCatalog()
	for _, o := range offers {
		o.Eligible = true
		o.Applied = true
	}

	winner := ResolveExclusivity(offers)
	if winner == nil || winner.Name != "OFR-0002" {
		t.Fatalf("expected OFR-0002 to win, got %+v", winner)
	}
	appliedCount := 0
	for _, o := range offers {
		if o.Applied {
			appliedCount++
		}
	}
	if appliedCount != 1 {
		t.Fatalf("expected exactly one applied offer, got %d", appliedCount)
	}
}

func TestResolveExclusivity_TieKeepsCatalogOrder(t *testing.T) {
	offers := []*Offer{
		{Name: "OFR-A", Kind: OfferKindGrandTotal, Scope: OfferScopeTransaction, DiscountPercent: dec("10"), Eligible: true, Applied: true},
		{Name: "OFR-B", Kind: OfferKindGrandTotal, Scope: OfferScopeTransaction, DiscountPercent: dec("10"), Eligible: true, Applied: true},
	}
	winner := ResolveExclusivity(offers)
	if winner == nil || winner.Name != "OFR-A" {
		t.Fatalf("expected first catalog entry to win the tie, got %+v", winner)
	}
	if offers[1].Applied {
		t.Fatal("losing offer still applied")
	}
}

func TestApplyOffers_WinnerDrivesAdditionalDiscount(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	offers := offerCatalog()
	for _, o := range offers {
		o.Applied = true
	}

	notices := ApplyOffers(offers, d, cfg)
	if d.AppliedOfferName != "OFR-0002" {
		t.Fatalf("expected applied offer OFR-0002, got %q", d.AppliedOfferName)
	}
	if !d.AdditionalDiscountPercent.Equal(dec("15")) {
		t.Fatalf("expected invoice discount 15, got %s", d.AdditionalDiscountPercent.String())
	}
	found := false
	for _, n := range notices {
		if n.Code == NoticeBestOfferApplied {
			found = true
		}
	}
	if !found {
		t.Fatal("expected best-offer notice when multiple offers competed")
	}
}

func TestApplyOffers_NoWinnerClearsDiscount(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	d.SetAdditionalDiscountPercent(dec("15"), cfg)
	d.AppliedOfferName = "OFR-0002"

	ApplyOffers(offerCatalog(), d, cfg)
	if d.AppliedOfferName != "" {
		t.Fatalf("expected applied offer cleared, got %q", d.AppliedOfferName)
	}
	if !d.AdditionalDiscountPercent.IsZero() {
		t.Fatalf("expected invoice discount cleared, got %s", d.AdditionalDiscountPercent.String())
	}
	if !d.Totals.RoundedTotal.Equal(dec("180")) {
		t.Fatalf("expected rounded total back to 180, got %s", d.Totals.RoundedTotal.String())
	}
}

func TestInitCatalog_AutoAppliesEligibleOffersOnce(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	offers := []*Offer{
		{Name: "OFR-AUTO", Kind: OfferKindGrandTotal, Scope: OfferScopeTransaction, DiscountPercent: dec("5"), AutoApply: true},
		{Name: "OFR-MANUAL", Kind: OfferKindGrandTotal, Scope: OfferScopeTransaction, DiscountPercent: dec("10")},
	}

	InitCatalog(offers, d)
	if !offers[0].Applied {
		t.Fatal("auto offer not applied at catalog load")
	}
	if offers[1].Applied {
		t.Fatal("manual offer applied without user action")
	}

	// User removes the auto offer; a later refresh must respect that.
	offers[0].Applied = false
	RefreshEligibility(offers, d)
	if offers[0].Applied {
		t.Fatal("refresh re-applied an offer the user removed")
	}
}

func TestRefreshEligibility_UnappliesIneligibleOffer(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg) // item total 180
	offers := []*Offer{
		{Name: "OFR-MIN", Kind: OfferKindGrandTotal, Scope: OfferScopeTransaction, DiscountPercent: dec("10"), MinAmount: dec("150")},
	}
	InitCatalog(offers, d)
	ToggleOffer(offers, "OFR-MIN", d, cfg)
	if !offers[0].Applied {
		t.Fatal("offer should be applied")
	}

	// Shrink the cart below the threshold.
	d.FindItem("ITM-001").SetQuantity(dec("1"), cfg)
	d.Recalculate(cfg)
	ApplyOffers(offers, d, cfg)

	if offers[0].Applied {
		t.Fatal("offer stayed applied below its minimum amount")
	}
	if !d.AdditionalDiscountPercent.IsZero() {
		t.Fatalf("expected discount removed, got %s", d.AdditionalDiscountPercent.String())
	}
}

func TestEligibility_ScopeMatching(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDraftInvoice("CUST-0007", "Retail")
	d.AddItem("ITM-001", "Test Item", "Beverages", "Nos", dec("100"), cfg)

	cases := []struct {
		name     string
		offer    Offer
		eligible bool
	}{
		{"item code match", Offer{Scope: OfferScopeItemCode, ApplyItemCode: "ITM-001"}, true},
		{"item code miss", Offer{Scope: OfferScopeItemCode, ApplyItemCode: "ITM-999"}, false},
		{"item group match", Offer{Scope: OfferScopeItemGroup, ApplyItemGroup: "Beverages"}, true},
		{"customer match", Offer{Scope: OfferScopeCustomer, Customer: "CUST-0007"}, true},
		{"customer miss", Offer{Scope: OfferScopeCustomer, Customer: "CUST-0001"}, false},
		{"customer group match", Offer{Scope: OfferScopeCustomerGroup, CustomerGroup: "Retail"}, true},
		{"transaction min qty unmet", Offer{Scope: OfferScopeTransaction, MinQty: dec("5")}, false},
		{"transaction min amount met", Offer{Scope: OfferScopeTransaction, MinAmount: dec("100")}, true},
	}
	for _, tc := range cases {
		if got := tc.offer.eligibleFor(d); got != tc.eligible {
			t.Fatalf("%s: expected eligible=%v, got %v", tc.name, tc.eligible, got)
		}
	}
}

func TestToggleOffer_SecondGrandTotalReplacesFirst(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	offers := offerCatalog()
	InitCatalog(offers, d)

	ToggleOffer(offers, "OFR-0001", d, cfg)
	if !d.AdditionalDiscountPercent.Equal(dec("5")) {
		t.Fatalf("expected 5%% applied, got %s", d.AdditionalDiscountPercent.String())
	}

	ToggleOffer(offers, "OFR-0003", d, cfg)
	if offers[0].Applied {
		t.Fatal("first offer should have been auto-removed")
	}
	if !offers[2].Applied {
		t.Fatal("second offer should be applied")
	}
	if !d.AdditionalDiscountPercent.Equal(dec("10")) {
		t.Fatalf("expected 10%% applied, got %s", d.AdditionalDiscountPercent.String())
	}

	// Toggling the applied offer off clears the discount entirely.
	ToggleOffer(offers, "OFR-0003", d, cfg)
	if !d.AdditionalDiscountPercent.IsZero() {
		t.Fatalf("expected discount cleared, got %s", d.AdditionalDiscountPercent.String())
	}
}

func TestToggleOffer_UnresolvedGiveProductStaysOff(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	offers := []*Offer{
		{Name: "OFR-GIVE", Kind: OfferKindGiveProduct, Scope: OfferScopeTransaction},
	}
	InitCatalog(offers, d)
	ToggleOffer(offers, "OFR-GIVE", d, cfg)
	if offers[0].Applied {
		t.Fatal("give-product offer without a target item must not apply")
	}
}
