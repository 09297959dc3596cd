package services

import (
	"time"

	"github.com/shopspring/decimal"

	"pharmaledger/internal/access"
	"pharmaledger/internal/ledger"
	"pharmaledger/internal/models"
	"pharmaledger/internal/pagination"
)

// UserServicer defines the contract for user accounts and sign-in.
type UserServicer interface {
	Authenticate(username, password string) (*models.User, error)
	CreateUser(actor access.Actor, username, password, fullName string, role models.Role, shift *models.ShiftType) (*models.User, error)
	UpdateUser(actor access.Actor, id, fullName string, password *string) (*models.User, error)
	DeactivateUser(actor access.Actor, id string) (*models.User, error)
	ReactivateUser(actor access.Actor, id string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	ListUsers(actor access.Actor, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	EnsureBootstrapAdmin(username, password string) (*models.User, error)
}

// ShiftSummary holds the raw per-shift sums shown on a shift screen, plus the
// expected cash derived from the cash-affecting subset.
type ShiftSummary struct {
	Shift           *models.ShiftInstance `json:"shift"`
	Sales           decimal.Decimal       `json:"sales"`
	Expenses        decimal.Decimal       `json:"expenses"`
	VendorPurchases decimal.Decimal       `json:"vendor_purchases"`
	VendorPayments  decimal.Decimal       `json:"vendor_payments"`
	Withdrawals     decimal.Decimal       `json:"withdrawals"`
	Investments     decimal.Decimal       `json:"investments"`
	ExpectedCash    decimal.Decimal       `json:"expected_cash"`
}

// CashFlows returns the subset of the summary that moves the drawer.
func (s *ShiftSummary) CashFlows() ledger.CashFlows {
	return ledger.CashFlows{
		Sales:          s.Sales,
		Expenses:       s.Expenses,
		VendorPayments: s.VendorPayments,
		Withdrawals:    s.Withdrawals,
		Investments:    s.Investments,
	}
}

// ShiftFilter narrows shift listings. Zero values mean "any".
type ShiftFilter struct {
	ShiftTypes []models.ShiftType
	Status     models.ShiftStatus
	From       *time.Time
	To         *time.Time
}

// ShiftServicer defines the open/close state machine of shift instances.
type ShiftServicer interface {
	OpenShift(actor access.Actor, shiftType models.ShiftType) (*models.ShiftInstance, error)
	CloseShift(actor access.Actor, shiftID string, closingCash decimal.Decimal) (*models.ShiftInstance, error)
	GetOpenShift(shiftType models.ShiftType) (*models.ShiftInstance, error)
	ListOpenShifts(actor access.Actor) ([]models.ShiftInstance, error)
	GetShift(id string) (*models.ShiftInstance, error)
	Summarize(shiftID string) (*ShiftSummary, error)
	ExpectedCash(shiftID string) (decimal.Decimal, error)
	ListShifts(filter ShiftFilter) ([]models.ShiftInstance, error)
}

// EntryInput carries the fields every ledger transaction shares.
// ShiftID is only read on create; an empty ShiftID means "my open shift" for
// shift-role users. A zero Date means today on create and "unchanged" on update.
type EntryInput struct {
	ShiftID string
	Amount  decimal.Decimal
	Date    time.Time
}

// SaleInput is the payload of a sale.
type SaleInput struct {
	EntryInput
	Description string
}

// ExpenseInput is the payload of an expense.
type ExpenseInput struct {
	EntryInput
	ExpenseHeadID string
	Description   string
}

// PurchaseInput is the payload of a vendor purchase.
type PurchaseInput struct {
	EntryInput
	InvoiceNumber string
	Notes         string
}

// PaymentInput is the payload of a vendor payment.
type PaymentInput struct {
	EntryInput
	PaymentMethod string
	Reference     string
	Notes         string
}

// ReturnInput is the payload of a vendor return.
type ReturnInput struct {
	EntryInput
	Reason string
}

// PersonalInput is the payload of an owner withdrawal or investment.
type PersonalInput struct {
	EntryInput
	Type        models.PersonalType
	Description string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	ShiftID       string
	VendorID      string
	ExpenseHeadID string
	PersonalType  models.PersonalType
	From          *time.Time
	To            *time.Time
	Limit         int
}

// SaleServicer defines the sales store.
type SaleServicer interface {
	AddSale(actor access.Actor, in SaleInput) (*models.Sale, error)
	UpdateSale(actor access.Actor, id string, in SaleInput) (*models.Sale, error)
	DeleteSale(actor access.Actor, id string) error
	ListSales(actor access.Actor, filter TransactionFilter) ([]models.Sale, error)
}

// ExpenseServicer defines the expenses store.
type ExpenseServicer interface {
	AddExpense(actor access.Actor, in ExpenseInput) (*models.Expense, error)
	UpdateExpense(actor access.Actor, id string, in ExpenseInput) (*models.Expense, error)
	DeleteExpense(actor access.Actor, id string) error
	ListExpenses(actor access.Actor, filter TransactionFilter) ([]models.Expense, error)
}

// ExpenseHeadServicer defines expense head master data.
type ExpenseHeadServicer interface {
	CreateExpenseHead(actor access.Actor, name, description string) (*models.ExpenseHead, error)
	UpdateExpenseHead(actor access.Actor, id, name, description string) (*models.ExpenseHead, error)
	SetExpenseHeadActive(actor access.Actor, id string, active bool) (*models.ExpenseHead, error)
	ListExpenseHeads(includeInactive bool) ([]models.ExpenseHead, error)
	GetExpenseHead(id string) (*models.ExpenseHead, error)
}

// VendorInput holds a vendor's editable fields.
type VendorInput struct {
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
}

// VendorLedgerEntry is one purchase, payment or return on a vendor ledger.
type VendorLedgerEntry struct {
	ID        string           `json:"id"`
	Date      time.Time        `json:"date"`
	Kind      string           `json:"kind"`
	ShiftID   string           `json:"shift_id"`
	ShiftType models.ShiftType `json:"shift_type"`
	Reference string           `json:"reference"`
	Debit     decimal.Decimal  `json:"debit"`
	Credit    decimal.Decimal  `json:"credit"`
	Balance   decimal.Decimal  `json:"balance"`
}

func (e VendorLedgerEntry) PostingDate() time.Time { return e.Date }

func (e VendorLedgerEntry) PostingKey() string { return e.ID }

func (e VendorLedgerEntry) PostingAmounts() (decimal.Decimal, decimal.Decimal) {
	return e.Debit, e.Credit
}

// VendorLedger is a vendor's windowed ledger, newest entry first.
// OpeningBalance is the balance as of the window start.
type VendorLedger struct {
	Vendor         *models.Vendor      `json:"vendor"`
	From           *time.Time          `json:"from,omitempty"`
	To             *time.Time          `json:"to,omitempty"`
	OpeningBalance decimal.Decimal     `json:"opening_balance"`
	ClosingBalance decimal.Decimal     `json:"closing_balance"`
	TotalDebit     decimal.Decimal     `json:"total_debit"`
	TotalCredit    decimal.Decimal     `json:"total_credit"`
	Entries        []VendorLedgerEntry `json:"entries"`
}

// VendorServicer defines vendor master data and the vendor ledger.
type VendorServicer interface {
	CreateVendor(actor access.Actor, in VendorInput, openingBalance decimal.Decimal) (*models.Vendor, error)
	UpdateVendor(actor access.Actor, id string, in VendorInput) (*models.Vendor, error)
	SetVendorActive(actor access.Actor, id string, active bool) (*models.Vendor, error)
	GetVendor(id string) (*models.Vendor, error)
	ListVendors(includeInactive bool) ([]models.Vendor, error)
	CurrentBalance(vendorID string) (decimal.Decimal, error)
	Ledger(actor access.Actor, vendorID string, from, to *time.Time) (*VendorLedger, error)
}

// VendorTransactionServicer defines the purchase, payment and return stores.
type VendorTransactionServicer interface {
	AddPurchase(actor access.Actor, vendorID string, in PurchaseInput) (*models.VendorPurchase, error)
	UpdatePurchase(actor access.Actor, id string, in PurchaseInput) (*models.VendorPurchase, error)
	DeletePurchase(actor access.Actor, id string) error
	ListPurchases(actor access.Actor, filter TransactionFilter) ([]models.VendorPurchase, error)

	AddPayment(actor access.Actor, vendorID string, in PaymentInput) (*models.VendorPayment, error)
	UpdatePayment(actor access.Actor, id string, in PaymentInput) (*models.VendorPayment, error)
	DeletePayment(actor access.Actor, id string) error
	ListPayments(actor access.Actor, filter TransactionFilter) ([]models.VendorPayment, error)

	AddReturn(actor access.Actor, vendorID string, in ReturnInput) (*models.VendorReturn, error)
	UpdateReturn(actor access.Actor, id string, in ReturnInput) (*models.VendorReturn, error)
	DeleteReturn(actor access.Actor, id string) error
	ListReturns(actor access.Actor, filter TransactionFilter) ([]models.VendorReturn, error)
}

// PersonalServicer defines the owner's personal ledger.
type PersonalServicer interface {
	Balance(actor access.Actor) (decimal.Decimal, error)
	AddPersonal(actor access.Actor, in PersonalInput) (*models.PersonalTransaction, error)
	UpdatePersonal(actor access.Actor, id string, in PersonalInput) (*models.PersonalTransaction, error)
	DeletePersonal(actor access.Actor, id string) error
	ListPersonal(actor access.Actor, filter TransactionFilter) ([]models.PersonalTransaction, error)
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ReportServicer defines the read-only roll-ups.
type ReportServicer interface {
	DailySummary(actor access.Actor, date time.Time) (*DailySummary, error)
	SalesReport(actor access.Actor, r DateRange) (*Report, error)
	ExpensesReport(actor access.Actor, r DateRange) (*Report, error)
	VendorLedgerReport(actor access.Actor, vendorID string, r DateRange) (*Report, error)
	PersonalLedgerReport(actor access.Actor, r DateRange, personalType models.PersonalType) (*Report, error)
	ShiftReport(actor access.Actor, r DateRange) (*Report, error)
	ProfitAndLoss(actor access.Actor, r DateRange, cogs *decimal.Decimal) (*ProfitAndLoss, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
	List(actor access.Actor, resourceType string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
