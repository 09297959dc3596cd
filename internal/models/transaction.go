package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerFields are shared by every transaction kind: an amount on an
// effective date, attributed to the shift that was open when it was entered.
// The shift tag never changes after creation.
type LedgerFields struct {
	ShiftID   string          `gorm:"type:uuid;not null;index" json:"shift_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Date      time.Time       `gorm:"type:date;not null;index" json:"date"`
	CreatedBy string          `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedBy *string         `gorm:"type:uuid" json:"updated_by,omitempty"`
}

// Sale is a lump sales total entered during a shift.
type Sale struct {
	Base
	LedgerFields
	Description string `json:"description"`
}

// Expense is cash paid out of the drawer against an expense head.
type Expense struct {
	Base
	LedgerFields
	ExpenseHeadID string `gorm:"type:uuid;not null;index" json:"expense_head_id"`
	Description   string `json:"description"`

	ExpenseHead *ExpenseHead `gorm:"foreignKey:ExpenseHeadID" json:"expense_head,omitempty"`
}

// VendorPurchase is stock bought on account; it raises the vendor payable.
type VendorPurchase struct {
	Base
	LedgerFields
	VendorID      string `gorm:"type:uuid;not null;index" json:"vendor_id"`
	InvoiceNumber string `json:"invoice_number"`
	Notes         string `json:"notes"`
}

// VendorPayment is cash paid to a vendor out of the drawer.
type VendorPayment struct {
	Base
	LedgerFields
	VendorID      string `gorm:"type:uuid;not null;index" json:"vendor_id"`
	PaymentMethod string `json:"payment_method"`
	Reference     string `json:"reference"`
	Notes         string `json:"notes"`
}

// VendorReturn is stock sent back to a vendor; it lowers the payable without
// touching the drawer.
type VendorReturn struct {
	Base
	LedgerFields
	VendorID string `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Reason   string `json:"reason"`
}

// PersonalType discriminates owner draws from owner capital injections.
type PersonalType string

const (
	PersonalWithdrawal PersonalType = "withdrawal"
	PersonalInvestment PersonalType = "investment"
)

// Valid reports whether t is a known personal transaction type.
func (t PersonalType) Valid() bool {
	return t == PersonalWithdrawal || t == PersonalInvestment
}

// PersonalTransaction is an owner's withdrawal from or investment into the drawer.
type PersonalTransaction struct {
	Base
	LedgerFields
	Type        PersonalType `gorm:"type:varchar(16);not null;index" json:"type"`
	Description string       `json:"description"`
}

// Ledger exposes the shared fields of any transaction kind.
func (l *LedgerFields) Ledger() *LedgerFields {
	return l
}
