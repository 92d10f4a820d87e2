package workflow

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/pos_backend/cart"
	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/erpclient"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("pos-backend")

// InvoiceSubmitter is the slice of the ERP client checkout needs. The
// indirection keeps the reconciliation and retry semantics testable
// without a live ERP.
type InvoiceSubmitter interface {
	SubmitInvoice(ctx context.Context, draft *cart.DraftInvoice) (*cart.ConfirmedInvoice, error)
	FetchInvoice(ctx context.Context, name string) (*cart.ConfirmedInvoice, error)
}

// ProcessCheckout runs the full submission pipeline for one invoice:
// terminal lock, totals recompute, payment reconciliation gate, ERP
// submit (with the single stale-conflict retry), then local persistence
// in one transaction. The draft is left intact on every failure path.
func ProcessCheckout(ctx context.Context, client InvoiceSubmitter, draft *cart.DraftInvoice) (*models.PosInvoice, error) {

	ctx, span := tracer.Start(ctx, "workflow.ProcessCheckout")
	defer span.End()

	logger := config.GetLogger()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	terminalId, ok := utils.GetTerminalIdFromContext(ctx)
	if !ok {
		return nil, errors.New("terminal id is required")
	}

	// one checkout at a time per terminal
	lock, err := utils.TerminalLock(ctx, businessId, terminalId, "Checkout", "checkoutWorkflow.go", "ProcessCheckout")
	if err != nil {
		config.LogError(logger, "checkoutWorkflow.go", "ProcessCheckout", "TerminalLock", terminalId, err)
		return nil, errors.New("terminal is busy, try again")
	}
	defer lock.Release(ctx)

	shift, err := models.GetOpenShiftForTerminal(ctx, terminalId)
	if err != nil {
		return nil, errors.New("no open shift on this terminal")
	}
	profile, err := models.GetPosProfile(ctx, shift.PosProfileId)
	if err != nil {
		config.LogError(logger, "checkoutWorkflow.go", "ProcessCheckout", "GetPosProfile", shift.PosProfileId, err)
		return nil, err
	}
	cfg := profile.CartConfig()

	if len(draft.Items) == 0 {
		return nil, errors.New("cart is empty")
	}
	if draft.IsReturn && !utils.DereferencePtr(profile.AllowReturns) {
		return nil, errors.New("returns are not allowed on this profile")
	}

	// The draft arrives straight from the client; pin its discounts back
	// inside the profile limits before the payment gate runs.
	draft.EnforceDiscountLimits(cfg)
	draft.AbsorbRoundingDrift(cfg)
	if err := draft.ValidatePayments(cfg); err != nil {
		// user-correctable, not logged as a failure
		return nil, err
	}

	if err := submitWithRetry(ctx, client, draft, cfg); err != nil {
		config.LogError(logger, "checkoutWorkflow.go", "ProcessCheckout", "SubmitInvoice", draft.Name, err)
		return nil, err
	}

	var invoice *models.PosInvoice
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err = models.RecordSubmittedInvoice(tx, ctx, draft, shift.ID, terminalId)
		return err
	})
	if err != nil {
		config.LogError(logger, "checkoutWorkflow.go", "ProcessCheckout", "RecordSubmittedInvoice", draft.Name, err)
		return nil, err
	}
	return invoice, nil
}

// submitWithRetry submits the draft and, on a stale-document conflict,
// reloads the authoritative copy, merges, and retries exactly once.
func submitWithRetry(ctx context.Context, client InvoiceSubmitter, draft *cart.DraftInvoice, cfg cart.Config) error {
	confirmed, err := client.SubmitInvoice(ctx, draft)
	if errors.Is(err, erpclient.ErrStaleDocument) && draft.Name != "" {
		reloaded, ferr := client.FetchInvoice(ctx, draft.Name)
		if ferr != nil {
			return ferr
		}
		cart.MergeConfirmed(draft, reloaded, cfg)
		confirmed, err = client.SubmitInvoice(ctx, draft)
	}
	if err != nil {
		return err
	}
	cart.MergeConfirmed(draft, confirmed, cfg)
	return nil
}
