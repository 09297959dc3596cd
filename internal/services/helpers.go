package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/logger"
	"pharmaledger/internal/models"
	"pharmaledger/internal/money"
)

// lookupErr maps a failed single-row read to notFound or a store error.
func lookupErr(err error, notFound *apperrors.AppError, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Store(apperrors.OpRead, resource, err)
}

// storeErr keeps AppErrors raised inside a transaction and wraps anything
// else as a store failure of the given operation.
func storeErr(err error, op apperrors.Op, resource string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	logger.Named("store").Errorw("store operation failed", "op", op, "resource", resource, "error", err)
	return apperrors.Store(op, resource, err)
}

// denied logs a permission failure and returns it unchanged.
func denied(actor access.Actor, action string, err error) error {
	logger.Named("access").Warnw("permission denied",
		"user_id", actor.UserID,
		"role", actor.Role,
		"action", action,
	)
	return err
}

func requireAll(actor access.Actor, action string, ops []access.Operation) error {
	for _, op := range ops {
		if err := access.Require(actor, op); err != nil {
			return denied(actor, action, err)
		}
	}
	return nil
}

// validateAmount rounds amount to the currency scale and rejects the result
// unless it is positive, so a sub-cent amount cannot be stored as zero.
func validateAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	rounded := money.Round(amount)
	if !money.IsPositive(rounded) {
		return decimal.Zero, apperrors.Validation("Amount must be greater than zero")
	}
	return rounded, nil
}

// validateRange rejects a range whose start is after its end.
func validateRange(from, to *time.Time) error {
	if from != nil && to != nil && models.DateOf(*from).After(models.DateOf(*to)) {
		return apperrors.Validation("Start date must be on or before end date")
	}
	return nil
}

func dateOrToday(d time.Time) time.Time {
	if d.IsZero() {
		return models.Today()
	}
	return models.DateOf(d)
}

// sumAmounts adds up the amount column of the rows of model matching the
// conditions. Summing happens in decimal so results are exact on every driver.
func sumAmounts(db *gorm.DB, model any, query string, args ...any) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := db.Model(model).Where(query, args...).Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	return money.Sum(amounts...), nil
}

// lockOpenShift resolves the shift a new transaction is attributed to and
// holds a shared lock on it until the surrounding transaction ends, so a
// concurrent close either sees the new row or makes this write fail.
func lockOpenShift(tx *gorm.DB, actor access.Actor, shiftID string) (*models.ShiftInstance, error) {
	if shiftID == "" {
		affinity, ok := actor.Affinity()
		if !ok {
			return nil, apperrors.Validation("A shift must be selected")
		}
		var open models.ShiftInstance
		err := tx.Select("id").
			Where("shift_type = ? AND status = ?", affinity, models.ShiftStatusOpen).
			First(&open).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNoOpenShift, fmt.Sprintf("No %s shift is open", affinity))
		}
		if err != nil {
			return nil, apperrors.Store(apperrors.OpRead, "shifts", err)
		}
		shiftID = open.ID
	}

	var shift models.ShiftInstance
	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		First(&shift, "id = ?", shiftID).Error
	if err != nil {
		return nil, lookupErr(err, apperrors.ErrShiftNotFound, "shift")
	}
	if err := access.RequireTransact(actor, shift.ShiftType); err != nil {
		return nil, denied(actor, "transact", err)
	}
	if !shift.IsOpen() {
		return nil, apperrors.WithMessage(apperrors.ErrShiftClosed, fmt.Sprintf("The %s shift is closed", shift.ShiftType))
	}
	return &shift, nil
}

// visibleShifts restricts q to rows on shifts the actor may see.
func visibleShifts(db, q *gorm.DB, actor access.Actor) *gorm.DB {
	types := access.VisibleShiftTypes(actor)
	if types == nil {
		return q
	}
	return q.Where("shift_id IN (?)",
		db.Model(&models.ShiftInstance{}).Select("id").Where("shift_type IN ?", types))
}
