package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type CountedAmount struct {
	Mode   string          `json:"mode_of_payment" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type CloseShiftInput struct {
	ShiftId int             `json:"shift_id" binding:"required"`
	Counted []CountedAmount `json:"counted" binding:"required"`
}

// BuildClosingRows computes the reconciliation table for a closing
// shift. Expected per mode is that mode's opening float plus its
// collected total; difference is counted minus expected. Modes appear
// when they carry an opening float, collected payments, or a counted
// amount, sorted by name for a stable report.
func BuildClosingRows(opening map[string]decimal.Decimal,
	collected map[string]decimal.Decimal, counted map[string]decimal.Decimal) []models.PosShiftClosingRow {

	names := map[string]bool{}
	for mode := range opening {
		names[mode] = true
	}
	for mode := range collected {
		names[mode] = true
	}
	for mode := range counted {
		names[mode] = true
	}
	ordered := make([]string, 0, len(names))
	for mode := range names {
		ordered = append(ordered, mode)
	}
	sort.Strings(ordered)

	rows := make([]models.PosShiftClosingRow, 0, len(ordered))
	for _, mode := range ordered {
		expected := opening[mode].Add(collected[mode])
		closing := counted[mode]
		rows = append(rows, models.PosShiftClosingRow{
			Mode:           mode,
			OpeningAmount:  opening[mode],
			ExpectedAmount: expected,
			ClosingAmount:  closing,
			Difference:     closing.Sub(expected),
		})
	}
	return rows
}

// CloseShift reconciles and closes an open shift. Runs under the
// terminal lock so a checkout cannot land between the expected-amount
// query and the status flip.
func CloseShift(ctx context.Context, input *CloseShiftInput) (*models.PosShift, error) {

	ctx, span := tracer.Start(ctx, "workflow.CloseShift")
	defer span.End()

	logger := config.GetLogger()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	username, _ := utils.GetUsernameFromContext(ctx)

	shift, err := models.GetPosShift(ctx, input.ShiftId)
	if err != nil {
		return nil, err
	}
	if shift.Status != models.PosShiftStatusOpen {
		return nil, errors.New("shift is already closed")
	}

	lock, err := utils.TerminalLock(ctx, businessId, shift.TerminalId, "ShiftClose", "shiftWorkflow.go", "CloseShift")
	if err != nil {
		config.LogError(logger, "shiftWorkflow.go", "CloseShift", "TerminalLock", shift.TerminalId, err)
		return nil, errors.New("terminal is busy, try again")
	}
	defer lock.Release(ctx)

	collected, err := shift.CollectedByMode(ctx)
	if err != nil {
		config.LogError(logger, "shiftWorkflow.go", "CloseShift", "CollectedByMode", shift.ID, err)
		return nil, err
	}
	counted := make(map[string]decimal.Decimal, len(input.Counted))
	for _, c := range input.Counted {
		counted[c.Mode] = c.Amount
	}

	rows := BuildClosingRows(shift.OpeningByMode(), collected, counted)

	now := time.Now().UTC()
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			rows[i].BusinessId = businessId
			rows[i].PosShiftId = shift.ID
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.PosShift{}).
			Where("business_id = ? AND id = ?", businessId, shift.ID).
			Updates(map[string]interface{}{
				"Status":   models.PosShiftStatusClosed,
				"ClosedBy": username,
				"ClosedAt": &now,
			}).Error
	})
	if err != nil {
		config.LogError(logger, "shiftWorkflow.go", "CloseShift", "Transaction", shift.ID, err)
		return nil, err
	}

	shift.Status = models.PosShiftStatusClosed
	shift.ClosedBy = username
	shift.ClosedAt = &now
	shift.ClosingRows = rows
	return shift, nil
}

// ClosingReportExcel renders the shift reconciliation as a workbook for
// the back office.
func ClosingReportExcel(shift *models.PosShift) (*excelize.File, error) {

	f := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", "Shift")
	f.SetCellValue(sheet, "B1", shift.ID)
	f.SetCellValue(sheet, "A2", "Opened By")
	f.SetCellValue(sheet, "B2", shift.OpenedBy)
	f.SetCellValue(sheet, "A3", "Opened At")
	f.SetCellValue(sheet, "B3", shift.OpenedAt.Format("2006-01-02 15:04"))
	if shift.ClosedAt != nil {
		f.SetCellValue(sheet, "A4", "Closed At")
		f.SetCellValue(sheet, "B4", shift.ClosedAt.Format("2006-01-02 15:04"))
	}

	headerRow := 6
	f.SetCellValue(sheet, "A"+fmt.Sprint(headerRow), "Mode")
	f.SetCellValue(sheet, "B"+fmt.Sprint(headerRow), "Opening")
	f.SetCellValue(sheet, "C"+fmt.Sprint(headerRow), "Expected")
	f.SetCellValue(sheet, "D"+fmt.Sprint(headerRow), "Counted")
	f.SetCellValue(sheet, "E"+fmt.Sprint(headerRow), "Difference")

	for i, row := range shift.ClosingRows {
		r := fmt.Sprint(headerRow + 1 + i)
		f.SetCellValue(sheet, "A"+r, row.Mode)
		f.SetCellValue(sheet, "B"+r, row.OpeningAmount.InexactFloat64())
		f.SetCellValue(sheet, "C"+r, row.ExpectedAmount.InexactFloat64())
		f.SetCellValue(sheet, "D"+r, row.ClosingAmount.InexactFloat64())
		f.SetCellValue(sheet, "E"+r, row.Difference.InexactFloat64())
	}
	return f, nil
}
