package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/cart"
	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PosInvoice is the locally persisted record of a submitted checkout.
// The ERP document (ErpName) stays authoritative; this row exists for
// shift reconciliation and terminal-side history.
type PosInvoice struct {
	ID         int    `gorm:"primary_key" json:"id"`
	BusinessId string `gorm:"primary_key;autoIncrement:false;not null" json:"business_id" binding:"required"`
	ErpName    string `gorm:"size:140;index" json:"erp_name"`
	PosShiftId int    `gorm:"index;not null" json:"pos_shift_id"`
	TerminalId int    `gorm:"index" json:"terminal_id"`

	Customer                  string          `gorm:"size:140;not null" json:"customer"`
	CustomerGroup             string          `gorm:"size:140;default:null" json:"customer_group"`
	IsReturn                  *bool           `gorm:"not null;default:false" json:"is_return"`
	ReturnAgainst             string          `gorm:"size:140;default:null" json:"return_against"`
	AppliedOfferName          string          `gorm:"size:140;default:null" json:"applied_offer_name"`
	AdditionalDiscountPercent decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"additional_discount_percentage"`

	TotalQty                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_qty"`
	ItemTotal                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	AdditionalDiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	NetTotal                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_total"`
	TaxAmount                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_taxes_and_charges"`
	GrandTotal               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	RoundedTotal             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rounded_total"`
	PaidTotal                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_total"`

	Details   []PosInvoiceDetail  `gorm:"foreignKey:PosInvoiceId" json:"details"`
	Payments  []PosInvoicePayment `gorm:"foreignKey:PosInvoiceId" json:"payments"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type PosInvoiceDetail struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null" json:"business_id"`
	PosInvoiceId    int             `gorm:"index;not null" json:"pos_invoice_id"`
	ItemCode        string          `gorm:"size:140;not null" json:"item_code"`
	ItemName        string          `gorm:"size:140;default:null" json:"item_name"`
	ItemGroup       string          `gorm:"size:140;default:null" json:"item_group"`
	UOM             string          `gorm:"size:50;default:null" json:"uom"`
	Qty             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	ListRate        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price_list_rate"`
	Rate            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_percentage"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type PosInvoicePayment struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id"`
	PosInvoiceId int             `gorm:"index;not null" json:"pos_invoice_id"`
	PosShiftId   int             `gorm:"index;not null" json:"pos_shift_id"`
	Idx          int             `gorm:"not null" json:"idx"`
	Mode         string          `gorm:"size:100;not null" json:"mode_of_payment"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// RecordSubmittedInvoice persists the checkout result inside the
// caller's transaction, zero-amount tender lines excluded.
func RecordSubmittedInvoice(tx *gorm.DB, ctx context.Context, draft *cart.DraftInvoice, shiftId int, terminalId int) (*PosInvoice, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	invoice := PosInvoice{
		BusinessId:                businessId,
		ErpName:                   draft.Name,
		PosShiftId:                shiftId,
		TerminalId:                terminalId,
		Customer:                  draft.Customer,
		CustomerGroup:             draft.CustomerGroup,
		IsReturn:                  &draft.IsReturn,
		ReturnAgainst:             draft.ReturnAgainst,
		AppliedOfferName:          draft.AppliedOfferName,
		AdditionalDiscountPercent: draft.AdditionalDiscountPercent,
		TotalQty:                  draft.Totals.TotalQty,
		ItemTotal:                 draft.Totals.ItemTotal,
		AdditionalDiscountAmount:  draft.Totals.AdditionalDiscountAmount,
		NetTotal:                  draft.Totals.NetTotal,
		TaxAmount:                 draft.Totals.TaxAmount,
		GrandTotal:                draft.Totals.GrandTotal,
		RoundedTotal:              draft.Totals.RoundedTotal,
		PaidTotal:                 draft.PaidTotal(),
	}
	for _, it := range draft.Items {
		invoice.Details = append(invoice.Details, PosInvoiceDetail{
			BusinessId:      businessId,
			ItemCode:        it.ItemCode,
			ItemName:        it.ItemName,
			ItemGroup:       it.ItemGroup,
			UOM:             it.UOM,
			Qty:             it.Qty,
			ListRate:        it.ListRate,
			Rate:            it.Rate,
			DiscountPercent: it.DiscountPercent,
			DiscountAmount:  it.DiscountAmount,
			Amount:          it.Amount,
		})
	}
	for _, p := range draft.Payments {
		if p.Amount.IsZero() {
			continue
		}
		invoice.Payments = append(invoice.Payments, PosInvoicePayment{
			BusinessId: businessId,
			PosShiftId: shiftId,
			Idx:        p.Idx,
			Mode:       p.Mode,
			Amount:     p.Amount,
		})
	}

	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func GetPosInvoice(ctx context.Context, id int) (*PosInvoice, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[PosInvoice](ctx, businessId, id, "Details", "Payments")
}

// ListShiftInvoices returns the shift's submitted invoices, newest
// first, for the terminal history panel.
func ListShiftInvoices(ctx context.Context, shiftId int) ([]*PosInvoice, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var invoices []*PosInvoice
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&PosInvoice{}).
		Preload("Payments").
		Where("business_id = ? AND pos_shift_id = ?", businessId, shiftId).
		Order("id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
