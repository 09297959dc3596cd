package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftStatus is the lifecycle state of a shift instance.
type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
)

// ShiftInstance is one open-to-close episode of a shift type.
//
// The partial unique index allows any number of closed rows per type but at
// most one open row; it is what makes concurrent opens safe.
type ShiftInstance struct {
	Base
	ShiftType   ShiftType       `gorm:"type:varchar(16);not null;uniqueIndex:idx_shift_instances_one_open,where:status = 'open'" json:"shift_type"`
	Status      ShiftStatus     `gorm:"type:varchar(16);not null;index" json:"status"`
	OpeningDate time.Time       `gorm:"type:date;not null;index" json:"opening_date"`
	OpenedAt    time.Time       `gorm:"not null" json:"opened_at"`
	OpeningCash decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"opening_cash"`
	OpenedBy    string          `gorm:"type:uuid;not null" json:"opened_by"`

	// Populated once, at close.
	ClosingDate  *time.Time       `gorm:"type:date" json:"closing_date,omitempty"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty"`
	ClosedBy     *string          `gorm:"type:uuid" json:"closed_by,omitempty"`
	ClosingCash  *decimal.Decimal `gorm:"type:decimal(14,2)" json:"closing_cash,omitempty"`
	ExpectedCash *decimal.Decimal `gorm:"type:decimal(14,2)" json:"expected_cash,omitempty"`
	Variance     *decimal.Decimal `gorm:"type:decimal(14,2)" json:"variance,omitempty"`
}

// IsOpen reports whether the shift still accepts transactions.
func (s *ShiftInstance) IsOpen() bool {
	return s.Status == ShiftStatusOpen
}
