package models

import (
	"time"

	"pharmaledger/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables.
// There is no soft-delete column: transactions are hard-deleted and users
// are deactivated through IsActive.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a time-ordered UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// GetID returns the primary key.
func (b *Base) GetID() string {
	return b.ID
}
