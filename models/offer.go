package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/cart"
	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

// PosOffer is the stored promotion catalog entry. ValidFrom/ValidUpto
// bound the offer in time; the cart package evaluates eligibility per
// invoice from the Candidate projection.
type PosOffer struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"primary_key;autoIncrement:false;not null" json:"business_id" binding:"required"`
	Name            string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Kind            cart.OfferKind  `gorm:"size:20;not null" json:"offer"`
	Scope           cart.OfferScope `gorm:"size:20;not null" json:"apply_on"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_percentage"`
	ApplyItemCode   string          `gorm:"size:100;default:null" json:"apply_item_code"`
	ApplyItemGroup  string          `gorm:"size:100;default:null" json:"apply_item_group"`
	Customer        string          `gorm:"size:100;default:null" json:"customer"`
	CustomerGroup   string          `gorm:"size:100;default:null" json:"customer_group"`
	MinQty          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_qty"`
	MinAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_amount"`
	GiveItemCode    string          `gorm:"size:100;default:null" json:"give_item"`
	AutoApply       *bool           `gorm:"not null;default:false" json:"auto"`
	ValidFrom       *time.Time      `gorm:"default:null" json:"valid_from"`
	ValidUpto       *time.Time      `gorm:"default:null" json:"valid_upto"`
	IsActive        *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPosOffer struct {
	Name            string          `json:"name" binding:"required"`
	Kind            cart.OfferKind  `json:"offer" binding:"required"`
	Scope           cart.OfferScope `json:"apply_on" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percentage"`
	ApplyItemCode   string          `json:"apply_item_code"`
	ApplyItemGroup  string          `json:"apply_item_group"`
	Customer        string          `json:"customer"`
	CustomerGroup   string          `json:"customer_group"`
	MinQty          decimal.Decimal `json:"min_qty"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	GiveItemCode    string          `json:"give_item"`
	AutoApply       *bool           `json:"auto"`
	ValidFrom       *time.Time      `json:"valid_from"`
	ValidUpto       *time.Time      `json:"valid_upto"`
}

// Candidate projects the stored offer into the calculation type.
func (o *PosOffer) Candidate() *cart.Offer {
	return &cart.Offer{
		Name:            o.Name,
		Kind:            o.Kind,
		Scope:           o.Scope,
		DiscountPercent: o.DiscountPercent,
		ApplyItemCode:   o.ApplyItemCode,
		ApplyItemGroup:  o.ApplyItemGroup,
		Customer:        o.Customer,
		CustomerGroup:   o.CustomerGroup,
		MinQty:          o.MinQty,
		MinAmount:       o.MinAmount,
		GiveItemCode:    o.GiveItemCode,
		AutoApply:       utils.DereferencePtr(o.AutoApply),
	}
}

// validate input for both create & update. (id = 0 for create)

func (input *NewPosOffer) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[PosOffer](ctx, businessId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[PosOffer](ctx, businessId, "name", input.Name, id); err != nil {
		return err
	}
	switch input.Kind {
	case cart.OfferKindGrandTotal, cart.OfferKindGiveProduct:
	default:
		return errors.New("invalid offer kind")
	}
	switch input.Scope {
	case cart.OfferScopeItemCode, cart.OfferScopeItemGroup, cart.OfferScopeCustomer,
		cart.OfferScopeCustomerGroup, cart.OfferScopeTransaction:
	default:
		return errors.New("invalid offer scope")
	}
	if input.Kind == cart.OfferKindGrandTotal && !input.DiscountPercent.IsPositive() {
		return errors.New("grand total offer requires a discount percentage")
	}
	if input.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("discount percentage cannot exceed 100")
	}
	if input.ValidFrom != nil && input.ValidUpto != nil && input.ValidUpto.Before(*input.ValidFrom) {
		return errors.New("valid_upto is before valid_from")
	}
	return nil
}

func (input *NewPosOffer) fields() map[string]interface{} {
	return map[string]interface{}{
		"Name":            input.Name,
		"Kind":            input.Kind,
		"Scope":           input.Scope,
		"DiscountPercent": input.DiscountPercent,
		"ApplyItemCode":   input.ApplyItemCode,
		"ApplyItemGroup":  input.ApplyItemGroup,
		"Customer":        input.Customer,
		"CustomerGroup":   input.CustomerGroup,
		"MinQty":          input.MinQty,
		"MinAmount":       input.MinAmount,
		"GiveItemCode":    input.GiveItemCode,
		"AutoApply":       input.AutoApply,
		"ValidFrom":       input.ValidFrom,
		"ValidUpto":       input.ValidUpto,
	}
}

func CreatePosOffer(ctx context.Context, input *NewPosOffer) (*PosOffer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	offer := PosOffer{
		BusinessId:      businessId,
		Name:            input.Name,
		Kind:            input.Kind,
		Scope:           input.Scope,
		DiscountPercent: input.DiscountPercent,
		ApplyItemCode:   input.ApplyItemCode,
		ApplyItemGroup:  input.ApplyItemGroup,
		Customer:        input.Customer,
		CustomerGroup:   input.CustomerGroup,
		MinQty:          input.MinQty,
		MinAmount:       input.MinAmount,
		GiveItemCode:    input.GiveItemCode,
		AutoApply:       input.AutoApply,
		ValidFrom:       input.ValidFrom,
		ValidUpto:       input.ValidUpto,
		IsActive:        utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func UpdatePosOffer(ctx context.Context, id int, input *NewPosOffer) (*PosOffer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	offer, err := utils.FetchModel[PosOffer](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&offer).Updates(input.fields()).Error
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func DeletePosOffer(ctx context.Context, id int) (*PosOffer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	db := config.GetDB()

	result, err := utils.FetchModel[PosOffer](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ActiveOfferCandidates loads the active, in-validity catalog in stored
// order. Catalog order matters: it is the exclusivity tie-break.
func ActiveOfferCandidates(ctx context.Context, at time.Time) ([]*cart.Offer, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var stored []*PosOffer
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&PosOffer{}).
		Where("business_id = ? AND is_active = true", businessId).
		Where("valid_from IS NULL OR valid_from <= ?", at).
		Where("valid_upto IS NULL OR valid_upto >= ?", at).
		Order("id").
		Find(&stored).Error
	if err != nil {
		return nil, err
	}

	offers := make([]*cart.Offer, 0, len(stored))
	for _, o := range stored {
		offers = append(offers, o.Candidate())
	}
	return offers, nil
}
