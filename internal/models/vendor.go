package models

import "github.com/shopspring/decimal"

// Vendor is a supplier the pharmacy buys from on account.
//
// CurrentBalance is not stored. It is derived on every read as
// opening balance + purchases − payments − returns over the full history.
type Vendor struct {
	Base
	Name           string          `gorm:"not null;index" json:"name"`
	ContactPerson  string          `json:"contact_person"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Address        string          `json:"address"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"opening_balance"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedBy      string          `gorm:"type:uuid;not null" json:"created_by"`

	CurrentBalance decimal.Decimal `gorm:"-" json:"current_balance"`
}
