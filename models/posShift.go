package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

type PosShiftStatus string

const (
	PosShiftStatusOpen   PosShiftStatus = "Open"
	PosShiftStatusClosed PosShiftStatus = "Closed"
)

// PosShift is one opening-to-closing session on a terminal. Invoices
// submitted while the shift is open attach to it; closing reconciles
// counted cash against the expected amounts per tender mode.
type PosShift struct {
	ID           int                  `gorm:"primary_key" json:"id"`
	BusinessId   string               `gorm:"primary_key;autoIncrement:false;not null" json:"business_id" binding:"required"`
	PosProfileId int                  `gorm:"index;not null" json:"pos_profile_id" binding:"required"`
	TerminalId   int                  `gorm:"index;not null" json:"terminal_id"`
	Status       PosShiftStatus       `gorm:"size:10;not null;default:'Open'" json:"status"`
	OpenedBy     string               `gorm:"size:100;not null" json:"opened_by"`
	ClosedBy     string               `gorm:"size:100;default:null" json:"closed_by"`
	OpenedAt     time.Time            `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time           `gorm:"default:null" json:"closed_at"`
	OpeningRows  []PosShiftOpeningRow `gorm:"foreignKey:PosShiftId" json:"opening_rows"`
	ClosingRows  []PosShiftClosingRow `gorm:"foreignKey:PosShiftId" json:"closing_rows"`
	CreatedAt    time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

// PosShiftOpeningRow is the counted drawer float for one tender mode,
// recorded when the shift opens. Each cash drawer carries its own
// float; non-cash modes usually open at zero and simply have no row.
type PosShiftOpeningRow struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"index;not null" json:"business_id"`
	PosShiftId int             `gorm:"index;not null" json:"pos_shift_id"`
	Mode       string          `gorm:"size:100;not null" json:"mode_of_payment"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// PosShiftClosingRow is the per-tender reconciliation line written at
// close: expected is opening float (cash only) plus collected amounts;
// difference is counted minus expected.
type PosShiftClosingRow struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	PosShiftId     int             `gorm:"index;not null" json:"pos_shift_id"`
	Mode           string          `gorm:"size:100;not null" json:"mode_of_payment"`
	OpeningAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_amount"`
	ExpectedAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"expected_amount"`
	ClosingAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"closing_amount"`
	Difference     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"difference"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewOpeningBalance struct {
	Mode   string          `json:"mode_of_payment" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type NewPosShift struct {
	PosProfileId    int                 `json:"pos_profile_id" binding:"required"`
	TerminalId      int                 `json:"terminal_id"`
	OpeningBalances []NewOpeningBalance `json:"opening_balances"`
}

func (input *NewPosShift) validate(ctx context.Context, businessId string) error {
	if err := utils.ValidateResourceId[PosProfile](ctx, businessId, input.PosProfileId); err != nil {
		return errors.New("pos profile not found")
	}
	seen := map[string]bool{}
	for _, b := range input.OpeningBalances {
		if b.Amount.IsNegative() {
			return errors.New("opening float cannot be negative")
		}
		if seen[b.Mode] {
			return errors.New("duplicate opening balance for mode " + b.Mode)
		}
		seen[b.Mode] = true
	}
	return nil
}

// OpenPosShift starts a shift. One open shift per terminal: a second
// open on the same terminal is rejected.
func OpenPosShift(ctx context.Context, input *NewPosShift) (*PosShift, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	username, _ := utils.GetUsernameFromContext(ctx)

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[PosShift](ctx, businessId,
		"terminal_id = ? AND status = ?", input.TerminalId, PosShiftStatusOpen)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("terminal already has an open shift")
	}

	shift := PosShift{
		BusinessId:   businessId,
		PosProfileId: input.PosProfileId,
		TerminalId:   input.TerminalId,
		Status:       PosShiftStatusOpen,
		OpenedBy:     username,
		OpenedAt:     time.Now().UTC(),
	}
	for _, b := range input.OpeningBalances {
		shift.OpeningRows = append(shift.OpeningRows, PosShiftOpeningRow{
			BusinessId: businessId,
			Mode:       b.Mode,
			Amount:     b.Amount,
		})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&shift).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func GetPosShift(ctx context.Context, id int) (*PosShift, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[PosShift](ctx, businessId, id, "OpeningRows", "ClosingRows")
}

// OpeningByMode projects the opening rows into the reconciliation map.
func (s *PosShift) OpeningByMode() map[string]decimal.Decimal {
	opening := make(map[string]decimal.Decimal, len(s.OpeningRows))
	for _, r := range s.OpeningRows {
		opening[r.Mode] = r.Amount
	}
	return opening
}

// GetOpenShiftForTerminal returns the terminal's open shift, or
// ErrorRecordNotFound when none is open.
func GetOpenShiftForTerminal(ctx context.Context, terminalId int) (*PosShift, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var shift PosShift
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&PosShift{}).
		Where("business_id = ? AND terminal_id = ? AND status = ?", businessId, terminalId, PosShiftStatusOpen).
		Take(&shift).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &shift, nil
}

// CollectedByMode sums submitted-invoice payments per tender mode for
// the shift. Returns drawer amounts, so return invoices subtract.
func (s *PosShift) CollectedByMode(ctx context.Context) (map[string]decimal.Decimal, error) {

	type row struct {
		Mode  string
		Total decimal.Decimal
	}
	var rows []row

	db := config.GetDB()
	err := db.WithContext(ctx).Model(&PosInvoicePayment{}).
		Select("mode, SUM(amount) AS total").
		Where("business_id = ? AND pos_shift_id = ?", s.BusinessId, s.ID).
		Group("mode").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	collected := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		collected[r.Mode] = r.Total
	}
	return collected, nil
}
