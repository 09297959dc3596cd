package models

import "time"

// User is a person who can sign in. Users are never deleted, only deactivated,
// so ledgers keep resolving who created an entry.
type User struct {
	Base
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FullName     string     `gorm:"not null" json:"full_name"`
	Role         Role       `gorm:"type:varchar(32);not null" json:"role"`
	Shift        *ShiftType `gorm:"type:varchar(16)" json:"shift,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedBy    *string    `gorm:"type:uuid" json:"created_by,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Affinity returns the shift type a shift-role user is bound to.
func (u *User) Affinity() (ShiftType, bool) {
	if u.Shift != nil {
		return *u.Shift, true
	}
	return u.Role.ShiftType()
}
