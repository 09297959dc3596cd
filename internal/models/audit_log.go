package models

// AuditLog records who changed what. Ledger rows are edited in place, so this
// is the only trace of an edit or delete.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}

// All lists every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&ShiftInstance{},
		&ExpenseHead{},
		&Vendor{},
		&Sale{},
		&Expense{},
		&VendorPurchase{},
		&VendorPayment{},
		&VendorReturn{},
		&PersonalTransaction{},
		&AuditLog{},
	}
}
