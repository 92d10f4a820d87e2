package models

import (
	"log"

	"bitbucket.org/mmdatafocus/pos_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&PosProfile{}, &PaymentMethod{},
		&PosOffer{},
		&PosShift{}, &PosShiftOpeningRow{}, &PosShiftClosingRow{},
		&PosInvoice{}, &PosInvoiceDetail{}, &PosInvoicePayment{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
