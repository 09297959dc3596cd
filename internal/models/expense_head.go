package models

// ExpenseHead is a named expense category. Disabling a head blocks new
// expenses against it but historical expenses keep their reference.
type ExpenseHead struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedBy   string `gorm:"type:uuid;not null" json:"created_by"`
}
