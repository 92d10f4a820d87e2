// seed-demo creates a demo business setup for a fresh terminal:
// a cashier user, one POS profile with cash + card tender modes, and a
// small offer catalog.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/pos_backend/cart"
	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

const (
	demoBusinessId = "demo-pos"
	demoUsername   = "demoCashier"
	demoPassword   = "Dem0C@shier"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	ctx = utils.SetBusinessIdInContext(ctx, demoBusinessId)
	ctx = utils.SetUsernameInContext(ctx, "Seed")

	if _, err := models.CreateUser(ctx, &models.NewUser{
		BusinessId: demoBusinessId,
		Username:   demoUsername,
		Name:       "Demo Cashier",
		Password:   demoPassword,
		Role:       models.UserRoleCashier,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user (may already exist): %v\n", err)
	}

	profile, err := models.CreatePosProfile(ctx, &models.NewPosProfile{
		Name:             "Demo Store",
		PriceList:        "Standard Selling",
		CashDenomination: decimal.NewFromFloat(0.5),
		TaxEnabled:       utils.NewFalse(),
		IsTaxInclusive:   utils.NewFalse(),
		PaymentTolerance: decimal.NewFromFloat(0.05),
		AllowReturns:     utils.NewTrue(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create profile: %v\n", err)
		os.Exit(1)
	}

	for _, m := range []models.NewPaymentMethod{
		{PosProfileId: profile.ID, Name: "Cash", IsCash: utils.NewTrue(), IsDefault: utils.NewTrue()},
		{PosProfileId: profile.ID, Name: "Credit Card", IsCash: utils.NewFalse(), IsDefault: utils.NewFalse()},
	} {
		method := m
		if _, err := models.CreatePaymentMethod(ctx, &method); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create payment method %s: %v\n", m.Name, err)
			os.Exit(1)
		}
	}

	for _, o := range []models.NewPosOffer{
		{
			Name:            "Opening Week 5% Off",
			Kind:            cart.OfferKindGrandTotal,
			Scope:           cart.OfferScopeTransaction,
			DiscountPercent: decimal.NewFromInt(5),
			AutoApply:       utils.NewTrue(),
		},
		{
			Name:            "Big Basket 10% Off",
			Kind:            cart.OfferKindGrandTotal,
			Scope:           cart.OfferScopeTransaction,
			DiscountPercent: decimal.NewFromInt(10),
			MinAmount:       decimal.NewFromInt(500),
			AutoApply:       utils.NewFalse(),
		},
	} {
		offer := o
		if _, err := models.CreatePosOffer(ctx, &offer); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create offer %s: %v\n", o.Name, err)
			os.Exit(1)
		}
	}

	fmt.Printf("seeded demo data: business=%s user=%s profile=%d\n", demoBusinessId, demoUsername, profile.ID)
}
