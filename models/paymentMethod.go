package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/cart"
	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
)

// PaymentMethod is one tender mode configured on a POS profile. Exactly
// one method per profile should carry IsDefault; SeedPayments falls back
// to the first line when none does.
type PaymentMethod struct {
	ID           int       `gorm:"primary_key" json:"id"`
	BusinessId   string    `gorm:"primary_key;autoIncrement:false;not null" json:"business_id" binding:"required"`
	PosProfileId int       `gorm:"index;not null" json:"pos_profile_id" binding:"required"`
	Name         string    `gorm:"size:100;not null" json:"name" binding:"required"`
	IsCash       *bool     `gorm:"not null;default:false" json:"is_cash"`
	IsDefault    *bool     `gorm:"not null;default:false" json:"is_default"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPaymentMethod struct {
	PosProfileId int    `json:"pos_profile_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	IsCash       *bool  `json:"is_cash"`
	IsDefault    *bool  `json:"is_default"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewPaymentMethod) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[PaymentMethod](ctx, businessId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateResourceId[PosProfile](ctx, businessId, input.PosProfileId); err != nil {
		return errors.New("pos profile not found")
	}
	count, err := utils.ResourceCountWhere[PaymentMethod](ctx, businessId,
		"pos_profile_id = ? AND name = ? AND id != ?", input.PosProfileId, input.Name, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("payment method name must be unique within the profile")
	}
	return nil
}

func CreatePaymentMethod(ctx context.Context, input *NewPaymentMethod) (*PaymentMethod, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	method := PaymentMethod{
		BusinessId:   businessId,
		PosProfileId: input.PosProfileId,
		Name:         input.Name,
		IsCash:       input.IsCash,
		IsDefault:    input.IsDefault,
		IsActive:     utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&method).Error; err != nil {
		return nil, err
	}
	if utils.DereferencePtr(method.IsDefault) {
		if err := clearOtherDefaults(ctx, businessId, method.PosProfileId, method.ID); err != nil {
			return nil, err
		}
	}
	return &method, nil
}

func UpdatePaymentMethod(ctx context.Context, id int, input *NewPaymentMethod) (*PaymentMethod, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	method, err := utils.FetchModel[PaymentMethod](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&method).Updates(map[string]interface{}{
		"Name":      input.Name,
		"IsCash":    input.IsCash,
		"IsDefault": input.IsDefault,
	}).Error
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(input.IsDefault) {
		if err := clearOtherDefaults(ctx, businessId, method.PosProfileId, method.ID); err != nil {
			return nil, err
		}
	}
	return method, nil
}

func DeletePaymentMethod(ctx context.Context, id int) (*PaymentMethod, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	db := config.GetDB()

	result, err := utils.FetchModel[PaymentMethod](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// clearOtherDefaults keeps the single-default invariant per profile.
func clearOtherDefaults(ctx context.Context, businessId string, profileId int, keepId int) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&PaymentMethod{}).
		Where("business_id = ? AND pos_profile_id = ? AND id != ?", businessId, profileId, keepId).
		Update("is_default", false).Error
}

// TenderModes converts the profile's active methods into the seed list
// for a fresh invoice's payment section.
func TenderModes(ctx context.Context, profileId int) ([]cart.PaymentLine, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var methods []*PaymentMethod
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&PaymentMethod{}).
		Where("business_id = ? AND pos_profile_id = ? AND is_active = true", businessId, profileId).
		Order("is_default DESC, id").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}

	modes := make([]cart.PaymentLine, 0, len(methods))
	for _, m := range methods {
		modes = append(modes, cart.PaymentLine{
			Mode:      m.Name,
			IsDefault: utils.DereferencePtr(m.IsDefault),
		})
	}
	return modes, nil
}
