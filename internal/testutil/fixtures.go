package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pharmaledger/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, failing loudly on typos in test tables.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date returns the given calendar day as midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates an active user with the given role and a unique username.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	return CreateTestUserWithUsername(t, db, role, fmt.Sprintf("user%d", nextID()))
}

// CreateTestUserWithUsername creates an active user with the given role and username.
func CreateTestUserWithUsername(t *testing.T, db *gorm.DB, role models.Role, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     "Test " + username,
		Role:         role,
		IsActive:     true,
	}
	if st, ok := role.ShiftType(); ok {
		user.Shift = &st
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// OpenTestShift inserts an open shift of the given type with 10,000.00 opening cash.
func OpenTestShift(t *testing.T, db *gorm.DB, shiftType models.ShiftType, openedBy string) *models.ShiftInstance {
	t.Helper()

	now := time.Now().UTC()
	shift := &models.ShiftInstance{
		ShiftType:   shiftType,
		Status:      models.ShiftStatusOpen,
		OpeningDate: models.DateOf(now),
		OpenedAt:    now,
		OpeningCash: Dec("10000.00"),
		OpenedBy:    openedBy,
	}
	if err := db.Create(shift).Error; err != nil {
		t.Fatalf("failed to open test shift: %v", err)
	}
	return shift
}

// CloseTestShift marks a shift closed without reconciling it.
func CloseTestShift(t *testing.T, db *gorm.DB, shift *models.ShiftInstance) {
	t.Helper()

	if err := db.Model(shift).Update("status", models.ShiftStatusClosed).Error; err != nil {
		t.Fatalf("failed to close test shift: %v", err)
	}
	shift.Status = models.ShiftStatusClosed
}

// CreateTestVendor creates an active vendor with the given opening balance.
func CreateTestVendor(t *testing.T, db *gorm.DB, createdBy string, opening decimal.Decimal) *models.Vendor {
	t.Helper()

	vendor := &models.Vendor{
		Name:           fmt.Sprintf("Test Vendor %d", nextID()),
		OpeningBalance: opening,
		IsActive:       true,
		CreatedBy:      createdBy,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("failed to create test vendor: %v", err)
	}
	return vendor
}

// CreateTestExpenseHead creates an active expense head.
func CreateTestExpenseHead(t *testing.T, db *gorm.DB, createdBy string) *models.ExpenseHead {
	t.Helper()

	head := &models.ExpenseHead{
		Name:      fmt.Sprintf("Test Head %d", nextID()),
		IsActive:  true,
		CreatedBy: createdBy,
	}
	if err := db.Create(head).Error; err != nil {
		t.Fatalf("failed to create test expense head: %v", err)
	}
	return head
}

// CreateTestSale inserts a sale directly, bypassing the service rules.
func CreateTestSale(t *testing.T, db *gorm.DB, shift *models.ShiftInstance, amount decimal.Decimal, date time.Time) *models.Sale {
	t.Helper()

	sale := &models.Sale{
		LedgerFields: models.LedgerFields{
			ShiftID:   shift.ID,
			Amount:    amount,
			Date:      models.DateOf(date),
			CreatedBy: shift.OpenedBy,
		},
	}
	if err := db.Create(sale).Error; err != nil {
		t.Fatalf("failed to create test sale: %v", err)
	}
	return sale
}
