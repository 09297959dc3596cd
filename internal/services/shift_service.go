package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharmaledger/internal/access"
	"pharmaledger/internal/database"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/ledger"
	"pharmaledger/internal/logger"
	"pharmaledger/internal/metrics"
	"pharmaledger/internal/models"
	"pharmaledger/internal/money"
)

// shiftService owns the open/close state machine of shift instances.
type shiftService struct {
	db          *gorm.DB
	metrics     *metrics.Metrics
	openingCash decimal.Decimal
	currency    string
}

// NewShiftService creates a new ShiftServicer. Every shift opens with
// openingCash in the drawer.
func NewShiftService(db *gorm.DB, m *metrics.Metrics, openingCash decimal.Decimal, currency string) ShiftServicer {
	return &shiftService{db: db, metrics: m, openingCash: openingCash, currency: currency}
}

// OpenShift starts a new instance of shiftType. At most one instance per type
// is open at a time: the pre-check gives a friendly error, the partial unique
// index settles races between concurrent opens.
func (s *shiftService) OpenShift(actor access.Actor, shiftType models.ShiftType) (*models.ShiftInstance, error) {
	if !shiftType.Valid() {
		return nil, apperrors.Validation("Unknown shift type %q", shiftType)
	}
	if err := access.RequireTransact(actor, shiftType); err != nil {
		return nil, denied(actor, "open shift", err)
	}

	alreadyOpen := apperrors.WithMessage(apperrors.ErrShiftAlreadyOpen,
		fmt.Sprintf("The %s shift is already open", shiftType))

	var shift *models.ShiftInstance
	err := database.Retry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.ShiftInstance{}).
				Where("shift_type = ? AND status = ?", shiftType, models.ShiftStatusOpen).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return alreadyOpen
			}

			now := time.Now().UTC()
			shift = &models.ShiftInstance{
				ShiftType:   shiftType,
				Status:      models.ShiftStatusOpen,
				OpeningDate: models.DateOf(now),
				OpenedAt:    now,
				OpeningCash: s.openingCash,
				OpenedBy:    actor.UserID,
			}
			return tx.Create(shift).Error
		})
	})
	if database.IsUniqueViolation(err) {
		return nil, alreadyOpen
	}
	if err != nil {
		return nil, storeErr(err, apperrors.OpCreate, "shift")
	}

	s.metrics.ShiftOpened(string(shiftType))
	logger.Named("shift").Infow("shift opened",
		"shift_id", shift.ID,
		"shift_type", shiftType,
		"opening_cash", shift.OpeningCash.String(),
		"user_id", actor.UserID,
	)
	return shift, nil
}

// CloseShift reconciles an open shift. The shift row stays locked from the
// moment its sums are read until the closing fields are written, so no
// transaction can slip in between.
func (s *shiftService) CloseShift(actor access.Actor, shiftID string, closingCash decimal.Decimal) (*models.ShiftInstance, error) {
	if closingCash.IsNegative() {
		return nil, apperrors.Validation("Closing cash cannot be negative")
	}

	var shift models.ShiftInstance
	err := database.Retry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
				First(&shift, "id = ?", shiftID).Error; err != nil {
				return lookupErr(err, apperrors.ErrShiftNotFound, "shift")
			}
			if err := access.RequireTransact(actor, shift.ShiftType); err != nil {
				return denied(actor, "close shift", err)
			}
			if !shift.IsOpen() {
				return apperrors.WithMessage(apperrors.ErrShiftClosed, fmt.Sprintf("The %s shift is already closed", shift.ShiftType))
			}

			flows, err := cashFlows(tx, shift.ID)
			if err != nil {
				return err
			}
			expected := ledger.ExpectedCash(shift.OpeningCash, flows)
			closing := money.Round(closingCash)
			variance := ledger.Variance(closing, expected)
			now := time.Now().UTC()
			closingDate := models.DateOf(now)

			res := tx.Model(&models.ShiftInstance{}).
				Where("id = ? AND status = ?", shift.ID, models.ShiftStatusOpen).
				Updates(map[string]any{
					"status":        models.ShiftStatusClosed,
					"closing_date":  closingDate,
					"closed_at":     now,
					"closed_by":     actor.UserID,
					"closing_cash":  closing,
					"expected_cash": expected,
					"variance":      variance,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.WithMessage(apperrors.ErrShiftClosed, fmt.Sprintf("The %s shift is already closed", shift.ShiftType))
			}

			shift.Status = models.ShiftStatusClosed
			shift.ClosingDate = &closingDate
			shift.ClosedAt = &now
			shift.ClosedBy = &actor.UserID
			shift.ClosingCash = &closing
			shift.ExpectedCash = &expected
			shift.Variance = &variance
			return nil
		})
	})
	if err != nil {
		return nil, storeErr(err, apperrors.OpUpdate, "shift")
	}

	s.metrics.ShiftClosed(string(shift.ShiftType), *shift.Variance)
	log := logger.Named("shift")
	log.Infow("shift closed",
		"shift_id", shift.ID,
		"shift_type", shift.ShiftType,
		"expected_cash", shift.ExpectedCash.String(),
		"closing_cash", shift.ClosingCash.String(),
		"variance", shift.Variance.String(),
		"user_id", actor.UserID,
	)
	if !shift.Variance.IsZero() {
		log.Warnf("%s shift closed with a variance of %s", shift.ShiftType, money.Format(s.currency, *shift.Variance))
	}
	return &shift, nil
}

// GetOpenShift returns the open instance of shiftType, or nil when none is open.
func (s *shiftService) GetOpenShift(shiftType models.ShiftType) (*models.ShiftInstance, error) {
	if !shiftType.Valid() {
		return nil, apperrors.Validation("Unknown shift type %q", shiftType)
	}
	var shift models.ShiftInstance
	err := s.db.Where("shift_type = ? AND status = ?", shiftType, models.ShiftStatusOpen).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "shifts", err)
	}
	return &shift, nil
}

// ListOpenShifts returns the open shifts the actor may transact on.
func (s *shiftService) ListOpenShifts(actor access.Actor) ([]models.ShiftInstance, error) {
	return s.ListShifts(ShiftFilter{
		ShiftTypes: access.VisibleShiftTypes(actor),
		Status:     models.ShiftStatusOpen,
	})
}

func (s *shiftService) GetShift(id string) (*models.ShiftInstance, error) {
	var shift models.ShiftInstance
	if err := s.db.First(&shift, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrShiftNotFound, "shift")
	}
	return &shift, nil
}

// Summarize returns the raw sums of every stream tagged with the shift.
func (s *shiftService) Summarize(shiftID string) (*ShiftSummary, error) {
	shift, err := s.GetShift(shiftID)
	if err != nil {
		return nil, err
	}

	summary := &ShiftSummary{Shift: shift}
	streams := []struct {
		model any
		query string
		args  []any
		into  *decimal.Decimal
	}{
		{&models.Sale{}, "shift_id = ?", []any{shift.ID}, &summary.Sales},
		{&models.Expense{}, "shift_id = ?", []any{shift.ID}, &summary.Expenses},
		{&models.VendorPurchase{}, "shift_id = ?", []any{shift.ID}, &summary.VendorPurchases},
		{&models.VendorPayment{}, "shift_id = ?", []any{shift.ID}, &summary.VendorPayments},
		{&models.PersonalTransaction{}, "shift_id = ? AND type = ?", []any{shift.ID, models.PersonalWithdrawal}, &summary.Withdrawals},
		{&models.PersonalTransaction{}, "shift_id = ? AND type = ?", []any{shift.ID, models.PersonalInvestment}, &summary.Investments},
	}
	for _, st := range streams {
		sum, err := sumAmounts(s.db, st.model, st.query, st.args...)
		if err != nil {
			return nil, apperrors.Store(apperrors.OpRead, "shift totals", err)
		}
		*st.into = sum
	}
	summary.ExpectedCash = ledger.ExpectedCash(shift.OpeningCash, summary.CashFlows())
	return summary, nil
}

// ExpectedCash is the cash the drawer should hold right now.
func (s *shiftService) ExpectedCash(shiftID string) (decimal.Decimal, error) {
	shift, err := s.GetShift(shiftID)
	if err != nil {
		return decimal.Zero, err
	}
	flows, err := cashFlows(s.db, shift.ID)
	if err != nil {
		return decimal.Zero, storeErr(err, apperrors.OpRead, "shift totals")
	}
	return ledger.ExpectedCash(shift.OpeningCash, flows), nil
}

// ListShifts returns shifts newest first.
func (s *shiftService) ListShifts(filter ShiftFilter) ([]models.ShiftInstance, error) {
	if err := validateRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	q := s.db.Model(&models.ShiftInstance{})
	if len(filter.ShiftTypes) > 0 {
		q = q.Where("shift_type IN ?", filter.ShiftTypes)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("opening_date >= ?", models.DateOf(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("opening_date <= ?", models.DateOf(*filter.To))
	}

	shifts := []models.ShiftInstance{}
	if err := q.Order("opened_at DESC").Find(&shifts).Error; err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "shifts", err)
	}
	return shifts, nil
}

// cashFlows sums the five drawer-moving streams tagged with shiftID.
func cashFlows(db *gorm.DB, shiftID string) (ledger.CashFlows, error) {
	var flows ledger.CashFlows
	var err error
	if flows.Sales, err = sumAmounts(db, &models.Sale{}, "shift_id = ?", shiftID); err != nil {
		return flows, err
	}
	if flows.Expenses, err = sumAmounts(db, &models.Expense{}, "shift_id = ?", shiftID); err != nil {
		return flows, err
	}
	if flows.VendorPayments, err = sumAmounts(db, &models.VendorPayment{}, "shift_id = ?", shiftID); err != nil {
		return flows, err
	}
	if flows.Withdrawals, err = sumAmounts(db, &models.PersonalTransaction{}, "shift_id = ? AND type = ?", shiftID, models.PersonalWithdrawal); err != nil {
		return flows, err
	}
	if flows.Investments, err = sumAmounts(db, &models.PersonalTransaction{}, "shift_id = ? AND type = ?", shiftID, models.PersonalInvestment); err != nil {
		return flows, err
	}
	return flows, nil
}
