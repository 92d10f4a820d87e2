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

// PosProfile holds the terminal-level calculation knobs: precision,
// cash rounding denomination, discount ceilings, tax setup and the
// payment reconciliation tolerance.
type PosProfile struct {
	ID                        int             `gorm:"primary_key" json:"id"`
	BusinessId                string          `gorm:"primary_key;autoIncrement:false;not null" json:"business_id" binding:"required"`
	Name                      string          `gorm:"size:100;not null" json:"name" binding:"required"`
	PriceList                 string          `gorm:"size:100;default:null" json:"price_list"`
	CurrencyPrecision         int             `gorm:"not null;default:2" json:"currency_precision"`
	QtyPrecision              int             `gorm:"not null;default:2" json:"qty_precision"`
	CashDenomination          decimal.Decimal `gorm:"type:decimal(20,4);default:0.5" json:"cash_denomination"`
	MaxItemDiscountPercent    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"max_item_discount_percent"`
	MaxInvoiceDiscountPercent decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"max_invoice_discount_percent"`
	TaxEnabled                *bool           `gorm:"not null;default:false" json:"tax_enabled"`
	TaxPercent                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_percent"`
	IsTaxInclusive            *bool           `gorm:"not null;default:false" json:"is_tax_inclusive"`
	PaymentTolerance          decimal.Decimal `gorm:"type:decimal(20,4);default:0.05" json:"payment_tolerance"`
	AllowReturns              *bool           `gorm:"not null;default:true" json:"allow_returns"`
	IsActive                  *bool           `gorm:"not null;default:true" json:"is_active"`
	PaymentMethods            []PaymentMethod `gorm:"foreignKey:PosProfileId" json:"payment_methods"`
	CreatedAt                 time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPosProfile struct {
	Name                      string          `json:"name" binding:"required"`
	PriceList                 string          `json:"price_list"`
	CurrencyPrecision         int             `json:"currency_precision"`
	QtyPrecision              int             `json:"qty_precision"`
	CashDenomination          decimal.Decimal `json:"cash_denomination"`
	MaxItemDiscountPercent    decimal.Decimal `json:"max_item_discount_percent"`
	MaxInvoiceDiscountPercent decimal.Decimal `json:"max_invoice_discount_percent"`
	TaxEnabled                *bool           `json:"tax_enabled"`
	TaxPercent                decimal.Decimal `json:"tax_percent"`
	IsTaxInclusive            *bool           `json:"is_tax_inclusive"`
	PaymentTolerance          decimal.Decimal `json:"payment_tolerance"`
	AllowReturns              *bool           `json:"allow_returns"`
}

// CartConfig maps the profile onto the calculation configuration.
func (p *PosProfile) CartConfig() cart.Config {
	cfg := cart.DefaultConfig()
	if p.CurrencyPrecision > 0 {
		cfg.CurrencyPrecision = int32(p.CurrencyPrecision)
	}
	if p.QtyPrecision > 0 {
		cfg.QtyPrecision = int32(p.QtyPrecision)
	}
	if p.CashDenomination.IsPositive() {
		cfg.CashDenomination = p.CashDenomination
	}
	cfg.MaxItemDiscountPercent = p.MaxItemDiscountPercent
	cfg.MaxInvoiceDiscountPercent = p.MaxInvoiceDiscountPercent
	cfg.TaxEnabled = utils.DereferencePtr(p.TaxEnabled)
	cfg.TaxPercent = p.TaxPercent
	cfg.IsTaxInclusive = utils.DereferencePtr(p.IsTaxInclusive)
	if p.PaymentTolerance.IsPositive() {
		cfg.PaymentTolerance = p.PaymentTolerance
	}
	return cfg
}

// validate input for both create & update. (id = 0 for create)

func (input *NewPosProfile) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[PosProfile](ctx, businessId, id); err != nil {
			return err
		}
	}
	// name
	if err := utils.ValidateUnique[PosProfile](ctx, businessId, "name", input.Name, id); err != nil {
		return err
	}
	if input.CashDenomination.IsNegative() {
		return errors.New("cash denomination cannot be negative")
	}
	if input.TaxPercent.IsNegative() {
		return errors.New("tax percent cannot be negative")
	}
	return nil
}

func (input *NewPosProfile) fields() map[string]interface{} {
	return map[string]interface{}{
		"Name":                      input.Name,
		"PriceList":                 input.PriceList,
		"CurrencyPrecision":         input.CurrencyPrecision,
		"QtyPrecision":              input.QtyPrecision,
		"CashDenomination":          input.CashDenomination,
		"MaxItemDiscountPercent":    input.MaxItemDiscountPercent,
		"MaxInvoiceDiscountPercent": input.MaxInvoiceDiscountPercent,
		"TaxEnabled":                input.TaxEnabled,
		"TaxPercent":                input.TaxPercent,
		"IsTaxInclusive":            input.IsTaxInclusive,
		"PaymentTolerance":          input.PaymentTolerance,
		"AllowReturns":              input.AllowReturns,
	}
}

func CreatePosProfile(ctx context.Context, input *NewPosProfile) (*PosProfile, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	profile := PosProfile{
		BusinessId:                businessId,
		Name:                      input.Name,
		PriceList:                 input.PriceList,
		CurrencyPrecision:         input.CurrencyPrecision,
		QtyPrecision:              input.QtyPrecision,
		CashDenomination:          input.CashDenomination,
		MaxItemDiscountPercent:    input.MaxItemDiscountPercent,
		MaxInvoiceDiscountPercent: input.MaxInvoiceDiscountPercent,
		TaxEnabled:                input.TaxEnabled,
		TaxPercent:                input.TaxPercent,
		IsTaxInclusive:            input.IsTaxInclusive,
		PaymentTolerance:          input.PaymentTolerance,
		AllowReturns:              input.AllowReturns,
		IsActive:                  utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&profile).Error
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func UpdatePosProfile(ctx context.Context, id int, input *NewPosProfile) (*PosProfile, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	profile, err := utils.FetchModel[PosProfile](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&profile).Updates(input.fields()).Error
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func GetPosProfile(ctx context.Context, id int) (*PosProfile, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[PosProfile](ctx, businessId, id, "PaymentMethods")
}

func ListPosProfiles(ctx context.Context) ([]*PosProfile, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var profiles []*PosProfile
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&PosProfile{}).
		Preload("PaymentMethods").
		Where("business_id = ?", businessId).
		Order("name").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func DeletePosProfile(ctx context.Context, id int) (*PosProfile, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	db := config.GetDB()

	result, err := utils.FetchModel[PosProfile](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	// reject when a shift is still open on this profile
	count, err := utils.ResourceCountWhere[PosShift](ctx, businessId, "pos_profile_id = ? AND status = ?", id, PosShiftStatusOpen)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("profile has an open shift")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
