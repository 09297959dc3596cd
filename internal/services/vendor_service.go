package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/ledger"
	"pharmaledger/internal/logger"
	"pharmaledger/internal/models"
	"pharmaledger/internal/money"
)

// vendorService handles vendor master data and derives vendor balances.
// Balances are never stored; every read recomputes them from the full
// purchase, payment and return history.
type vendorService struct {
	db *gorm.DB
}

// NewVendorService creates a new VendorServicer.
func NewVendorService(db *gorm.DB) VendorServicer {
	return &vendorService{db: db}
}

func (s *vendorService) CreateVendor(actor access.Actor, in VendorInput, openingBalance decimal.Decimal) (*models.Vendor, error) {
	if err := access.Require(actor, access.ManageMasterData); err != nil {
		return nil, denied(actor, "create vendor", err)
	}
	if err := validateVendor(&in); err != nil {
		return nil, err
	}

	vendor := &models.Vendor{
		Name:           in.Name,
		ContactPerson:  in.ContactPerson,
		Phone:          in.Phone,
		Email:          in.Email,
		Address:        in.Address,
		OpeningBalance: money.Round(openingBalance),
		IsActive:       true,
		CreatedBy:      actor.UserID,
	}
	if err := s.db.Create(vendor).Error; err != nil {
		return nil, storeErr(err, apperrors.OpCreate, "vendor")
	}
	vendor.CurrentBalance = vendor.OpeningBalance

	logger.Named("masterdata").Infow("vendor created",
		"id", vendor.ID, "name", vendor.Name, "opening_balance", vendor.OpeningBalance.String(), "user_id", actor.UserID)
	return vendor, nil
}

// UpdateVendor edits contact fields. The opening balance is fixed at creation.
func (s *vendorService) UpdateVendor(actor access.Actor, id string, in VendorInput) (*models.Vendor, error) {
	if err := access.Require(actor, access.ManageMasterData); err != nil {
		return nil, denied(actor, "update vendor", err)
	}
	if err := validateVendor(&in); err != nil {
		return nil, err
	}

	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrVendorNotFound, "vendor")
	}
	err := s.db.Model(&vendor).Select("name", "contact_person", "phone", "email", "address").
		Updates(models.Vendor{
			Name:          in.Name,
			ContactPerson: in.ContactPerson,
			Phone:         in.Phone,
			Email:         in.Email,
			Address:       in.Address,
		}).Error
	if err != nil {
		return nil, storeErr(err, apperrors.OpUpdate, "vendor")
	}
	return s.GetVendor(id)
}

// SetVendorActive enables or disables a vendor. A disabled vendor keeps its
// history and balance but takes no new transactions.
func (s *vendorService) SetVendorActive(actor access.Actor, id string, active bool) (*models.Vendor, error) {
	if err := access.Require(actor, access.ManageMasterData); err != nil {
		return nil, denied(actor, "toggle vendor", err)
	}
	res := s.db.Model(&models.Vendor{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return nil, storeErr(res.Error, apperrors.OpUpdate, "vendor")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrVendorNotFound
	}
	return s.GetVendor(id)
}

func (s *vendorService) GetVendor(id string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrVendorNotFound, "vendor")
	}
	movements, err := vendorMovements(s.db, []string{vendor.ID})
	if err != nil {
		return nil, err
	}
	vendor.CurrentBalance = movements[vendor.ID].balance(vendor.OpeningBalance)
	return &vendor, nil
}

// ListVendors returns vendors by name, each with its derived balance.
func (s *vendorService) ListVendors(includeInactive bool) ([]models.Vendor, error) {
	return listVendors(s.db, includeInactive)
}

// CurrentBalance is opening balance + purchases − payments − returns, all time.
func (s *vendorService) CurrentBalance(vendorID string) (decimal.Decimal, error) {
	vendor, err := s.GetVendor(vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	return vendor.CurrentBalance, nil
}

// Ledger merges purchases (debit), payments and returns (credit) into one
// running-balance view. The seed is the balance as of the window start, so a
// window that begins after the first transaction still shows true balances.
// Entries come back newest first.
func (s *vendorService) Ledger(actor access.Actor, vendorID string, from, to *time.Time) (*VendorLedger, error) {
	if err := access.Require(actor, access.ViewReports); err != nil {
		return nil, denied(actor, "view vendor ledger", err)
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", vendorID).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrVendorNotFound, "vendor")
	}

	history, err := vendorHistory(s.db, vendor.ID, to)
	if err != nil {
		return nil, err
	}

	seed := vendor.OpeningBalance
	window := history
	if from != nil {
		start := models.DateOf(*from)
		seed = ledger.SeedBefore(vendor.OpeningBalance, start, history)
		window = window[:0:0]
		for _, e := range history {
			if !e.Date.Before(start) {
				window = append(window, e)
			}
		}
	}

	lines := ledger.RunningBalance(seed, window)
	out := &VendorLedger{
		Vendor:         &vendor,
		OpeningBalance: seed,
		ClosingBalance: seed,
		Entries:        make([]VendorLedgerEntry, 0, len(lines)),
	}
	if from != nil {
		f := models.DateOf(*from)
		out.From = &f
	}
	if to != nil {
		t := models.DateOf(*to)
		out.To = &t
	}
	if len(lines) > 0 {
		out.ClosingBalance = ledger.Last(lines)
	}
	for _, l := range ledger.Reverse(lines) {
		e := l.Posting
		e.Balance = l.Balance
		out.TotalDebit = out.TotalDebit.Add(e.Debit)
		out.TotalCredit = out.TotalCredit.Add(e.Credit)
		out.Entries = append(out.Entries, e)
	}

	movements, err := vendorMovements(s.db, []string{vendor.ID})
	if err != nil {
		return nil, err
	}
	vendor.CurrentBalance = movements[vendor.ID].balance(vendor.OpeningBalance)
	return out, nil
}

func validateVendor(in *VendorInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.Validation("Name is required")
	}
	return nil
}

func listVendors(db *gorm.DB, includeInactive bool) ([]models.Vendor, error) {
	q := db.Model(&models.Vendor{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	vendors := []models.Vendor{}
	if err := q.Order("name ASC").Find(&vendors).Error; err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "vendors", err)
	}
	if len(vendors) == 0 {
		return vendors, nil
	}

	ids := make([]string, len(vendors))
	for i, v := range vendors {
		ids[i] = v.ID
	}
	movements, err := vendorMovements(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range vendors {
		vendors[i].CurrentBalance = movements[vendors[i].ID].balance(vendors[i].OpeningBalance)
	}
	return vendors, nil
}

// vendorTotals are one vendor's all-time sums per transaction kind.
type vendorTotals struct {
	purchases decimal.Decimal
	payments  decimal.Decimal
	returns   decimal.Decimal
}

func (t vendorTotals) balance(opening decimal.Decimal) decimal.Decimal {
	return opening.Add(t.purchases).Sub(t.payments).Sub(t.returns)
}

type vendorAmount struct {
	VendorID string
	Amount   decimal.Decimal
}

// vendorMovements loads the all-time totals of the given vendors. Amounts are
// pulled row by row and summed in decimal.
func vendorMovements(db *gorm.DB, vendorIDs []string) (map[string]vendorTotals, error) {
	totals := make(map[string]vendorTotals, len(vendorIDs))
	kinds := []struct {
		model any
		apply func(t *vendorTotals, amount decimal.Decimal)
	}{
		{&models.VendorPurchase{}, func(t *vendorTotals, a decimal.Decimal) { t.purchases = t.purchases.Add(a) }},
		{&models.VendorPayment{}, func(t *vendorTotals, a decimal.Decimal) { t.payments = t.payments.Add(a) }},
		{&models.VendorReturn{}, func(t *vendorTotals, a decimal.Decimal) { t.returns = t.returns.Add(a) }},
	}
	for _, k := range kinds {
		var rows []vendorAmount
		if err := db.Model(k.model).Select("vendor_id", "amount").
			Where("vendor_id IN ?", vendorIDs).Find(&rows).Error; err != nil {
			return nil, apperrors.Store(apperrors.OpRead, "vendor transactions", err)
		}
		for _, r := range rows {
			t := totals[r.VendorID]
			k.apply(&t, r.Amount)
			totals[r.VendorID] = t
		}
	}
	return totals, nil
}

// vendorHistory returns every purchase, payment and return of the vendor up
// to and including to, joined with the originating shift's type.
func vendorHistory(db *gorm.DB, vendorID string, to *time.Time) ([]VendorLedgerEntry, error) {
	var entries []VendorLedgerEntry

	scope := func(q *gorm.DB, table string) *gorm.DB {
		q = q.Joins("LEFT JOIN shift_instances ON shift_instances.id = " + table + ".shift_id").
			Where(table+".vendor_id = ?", vendorID)
		if to != nil {
			q = q.Where(table+".date <= ?", models.DateOf(*to))
		}
		return q
	}

	type row struct {
		ID        string
		Date      time.Time
		ShiftID   string
		ShiftType models.ShiftType
		Reference string
		Amount    decimal.Decimal
	}
	kinds := []struct {
		kind      string
		model     any
		table     string
		reference string
		debit     bool
	}{
		{"purchase", &models.VendorPurchase{}, "vendor_purchases", "vendor_purchases.invoice_number", true},
		{"payment", &models.VendorPayment{}, "vendor_payments", "vendor_payments.reference", false},
		{"return", &models.VendorReturn{}, "vendor_returns", "vendor_returns.reason", false},
	}
	for _, k := range kinds {
		var rows []row
		err := scope(db.Model(k.model), k.table).
			Select(k.table + ".id, " + k.table + ".date, " + k.table + ".shift_id, shift_instances.shift_type, " +
				k.reference + " AS reference, " + k.table + ".amount").
			Find(&rows).Error
		if err != nil {
			return nil, apperrors.Store(apperrors.OpRead, "vendor ledger", err)
		}
		for _, r := range rows {
			e := VendorLedgerEntry{
				ID:        r.ID,
				Date:      models.DateOf(r.Date),
				Kind:      k.kind,
				ShiftID:   r.ShiftID,
				ShiftType: r.ShiftType,
				Reference: r.Reference,
				Debit:     decimal.Zero,
				Credit:    decimal.Zero,
			}
			if k.debit {
				e.Debit = r.Amount
			} else {
				e.Credit = r.Amount
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}
