package erpclient

import (
	"context"
	"errors"
	"net/url"

	"bitbucket.org/mmdatafocus/pos_backend/cart"
	"github.com/shopspring/decimal"
)

// UpdateInvoice pushes the draft for a server-side recalculation and
// returns the authoritative copy to merge back.
func (c *Client) UpdateInvoice(ctx context.Context, draft *cart.DraftInvoice) (*cart.ConfirmedInvoice, error) {
	var confirmed cart.ConfirmedInvoice
	if err := c.do(ctx, "POST", "/api/pos/invoice/update", draft, &confirmed); err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// FetchInvoice reloads the authoritative copy by name, used after a
// stale-document conflict before the single retry.
func (c *Client) FetchInvoice(ctx context.Context, name string) (*cart.ConfirmedInvoice, error) {
	var confirmed cart.ConfirmedInvoice
	path := "/api/pos/invoice/" + url.PathEscape(name)
	if err := c.do(ctx, "GET", path, nil, &confirmed); err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// SubmitInvoice finalizes the invoice on the server. Payments must have
// passed local reconciliation first.
func (c *Client) SubmitInvoice(ctx context.Context, draft *cart.DraftInvoice) (*cart.ConfirmedInvoice, error) {
	var confirmed cart.ConfirmedInvoice
	if err := c.do(ctx, "POST", "/api/pos/invoice/submit", draft, &confirmed); err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// SyncDraft runs the update round trip with the stale-conflict policy:
// on ErrStaleDocument the authoritative copy is reloaded, merged into
// the draft, and the update retried exactly once. Any other failure
// leaves the draft untouched.
func (c *Client) SyncDraft(ctx context.Context, draft *cart.DraftInvoice, cfg cart.Config) error {
	confirmed, err := c.UpdateInvoice(ctx, draft)
	if errors.Is(err, ErrStaleDocument) && draft.Name != "" {
		reloaded, ferr := c.FetchInvoice(ctx, draft.Name)
		if ferr != nil {
			return ferr
		}
		cart.MergeConfirmed(draft, reloaded, cfg)
		confirmed, err = c.UpdateInvoice(ctx, draft)
	}
	if err != nil {
		return err
	}
	cart.MergeConfirmed(draft, confirmed, cfg)
	return nil
}

// GetOffers fetches the active offer catalog for the POS profile.
func (c *Client) GetOffers(ctx context.Context, profile string) ([]*cart.Offer, error) {
	var offers []*cart.Offer
	path := "/api/pos/offers?" + url.Values{"pos_profile": {profile}}.Encode()
	if err := c.do(ctx, "GET", path, nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// GetCustomerBalance returns the customer's outstanding balance, shown
// alongside the cart.
func (c *Client) GetCustomerBalance(ctx context.Context, customer string) (decimal.Decimal, error) {
	var out struct {
		Balance decimal.Decimal `json:"balance"`
	}
	path := "/api/pos/customer-balance?" + url.Values{"customer": {customer}}.Encode()
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}
