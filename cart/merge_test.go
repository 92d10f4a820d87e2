package cart

import "testing"

func TestMergeConfirmed_ServerWinsComputedFields(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)

	c := &ConfirmedInvoice{
		Name: "ACC-SINV-2026-00042",
		Items: []ConfirmedItem{
			{ItemCode: "ITM-001", Qty: dec("2"), Rate: dec("88"), DiscountPercent: dec("12"), DiscountAmount: dec("24"), Amount: dec("176")},
		},
		ItemTotal:    dec("176"),
		NetTotal:     dec("176"),
		GrandTotal:   dec("176"),
		RoundedTotal: dec("176"),
	}
	MergeConfirmed(d, c, cfg)

	if d.Name != "ACC-SINV-2026-00042" {
		t.Fatalf("expected server name, got %q", d.Name)
	}
	it := d.FindItem("ITM-001")
	if !it.Rate.Equal(dec("88")) {
		t.Fatalf("expected server rate 88, got %s", it.Rate.String())
	}
	if !d.Totals.GrandTotal.Equal(dec("176")) {
		t.Fatalf("expected server grand total 176, got %s", d.Totals.GrandTotal.String())
	}
}

func TestMergeConfirmed_PreservesDisplayOnlyLocalFields(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)

	// Server response omits list rate, item name and UOM.
	c := &ConfirmedInvoice{
		Name: "ACC-SINV-2026-00042",
		Items: []ConfirmedItem{
			{ItemCode: "ITM-001", Qty: dec("2"), Rate: dec("90"), Amount: dec("180")},
		},
		ItemTotal:    dec("180"),
		NetTotal:     dec("180"),
		GrandTotal:   dec("180"),
		RoundedTotal: dec("180"),
	}
	MergeConfirmed(d, c, cfg)

	it := d.FindItem("ITM-001")
	if !it.ListRate.Equal(dec("100")) {
		t.Fatalf("local list rate lost: %s", it.ListRate.String())
	}
	if it.ItemName != "Test Item" {
		t.Fatalf("local item name lost: %q", it.ItemName)
	}
	if it.UOM != "Nos" {
		t.Fatalf("local UOM lost: %q", it.UOM)
	}
}

func TestMergeConfirmed_TotalMergeReplacesLineSet(t *testing.T) {
	cfg := DefaultConfig()
	d := buildDiscountedCart(cfg)
	d.AddItem("ITM-OLD", "Dropped Item", "Products", "Nos", dec("50"), cfg)

	c := &ConfirmedInvoice{
		Items: []ConfirmedItem{
			{ItemCode: "ITM-001", ItemName: "Test Item", Qty: dec("2"), Rate: dec("90"), Amount: dec("180")},
			{ItemCode: "ITM-FREE", ItemName: "Promo Item", Qty: dec("1"), ListRate: dec("0"), Rate: dec("0")},
		},
		ItemTotal:  dec("180"),
		NetTotal:   dec("180"),
		GrandTotal: dec("180"),
	}
	MergeConfirmed(d, c, cfg)

	if d.FindItem("ITM-OLD") != nil {
		t.Fatal("line dropped by the server survived the merge")
	}
	if d.FindItem("ITM-FREE") == nil {
		t.Fatal("line added by the server missing after merge")
	}
	if !d.Totals.TotalQty.Equal(dec("3")) {
		t.Fatalf("expected recomputed total qty 3, got %s", d.Totals.TotalQty.String())
	}
	// No rounded total from the server: derived from the grand total.
	if !d.Totals.RoundedTotal.Equal(dec("180")) {
		t.Fatalf("expected derived rounded total 180, got %s", d.Totals.RoundedTotal.String())
	}
}
