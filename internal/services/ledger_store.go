package services

import (
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/logger"
	"pharmaledger/internal/metrics"
	"pharmaledger/internal/models"
)

// ledgerRow is a pointer to any transaction model.
type ledgerRow[T any] interface {
	*T
	GetID() string
	Ledger() *models.LedgerFields
}

// ledgerStore implements the contract every transaction kind shares: amount
// validation, attribution to an open shift, the edit and delete rules, and
// filtered listing. Kind-specific behaviour is plugged in through the fields.
type ledgerStore[T any, P ledgerRow[T]] struct {
	db      *gorm.DB
	metrics *metrics.Metrics

	kind     string
	notFound *apperrors.AppError

	// ops gate add, update and list on top of the shift rules.
	ops []access.Operation

	// check runs inside the write transaction before the row is saved. prev
	// is nil on create.
	check func(tx *gorm.DB, row, prev P) error
}

func (s *ledgerStore[T, P]) add(actor access.Actor, in EntryInput, fill func(row P)) (P, error) {
	amount, err := validateAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if err := requireAll(actor, "add "+s.kind, s.ops); err != nil {
		return nil, err
	}

	row := P(new(T))
	fill(row)
	l := row.Ledger()
	l.Amount = amount
	l.Date = dateOrToday(in.Date)
	l.CreatedBy = actor.UserID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		shift, err := lockOpenShift(tx, actor, in.ShiftID)
		if err != nil {
			return err
		}
		l.ShiftID = shift.ID

		if s.check != nil {
			if err := s.check(tx, row, nil); err != nil {
				return err
			}
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, storeErr(err, apperrors.OpCreate, s.kind)
	}

	s.metrics.LedgerWrite(s.kind, "create")
	logger.Named("ledger").Infow("transaction recorded",
		"kind", s.kind, "id", row.GetID(), "shift_id", l.ShiftID, "amount", l.Amount.String(), "user_id", actor.UserID)
	return row, nil
}

func (s *ledgerStore[T, P]) update(actor access.Actor, id string, in EntryInput, apply func(row P)) (P, error) {
	amount, err := validateAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if err := requireAll(actor, "edit "+s.kind, s.ops); err != nil {
		return nil, err
	}

	row := P(new(T))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(row, "id = ?", id).Error; err != nil {
			return lookupErr(err, s.notFound, s.kind)
		}

		var shift models.ShiftInstance
		if err := tx.Select("id", "shift_type").First(&shift, "id = ?", row.Ledger().ShiftID).Error; err != nil {
			return lookupErr(err, apperrors.ErrShiftNotFound, "shift")
		}
		if err := access.RequireEdit(actor, shift.ShiftType); err != nil {
			return denied(actor, "edit "+s.kind, err)
		}

		prev := *row
		apply(row)
		l := row.Ledger()
		l.Amount = amount
		if !in.Date.IsZero() {
			l.Date = models.DateOf(in.Date)
		}
		l.UpdatedBy = &actor.UserID

		if s.check != nil {
			if err := s.check(tx, row, P(&prev)); err != nil {
				return err
			}
		}
		return tx.Save(row).Error
	})
	if err != nil {
		return nil, storeErr(err, apperrors.OpUpdate, s.kind)
	}

	s.metrics.LedgerWrite(s.kind, "update")
	return row, nil
}

func (s *ledgerStore[T, P]) delete(actor access.Actor, id string) error {
	ops := append([]access.Operation{access.DeleteTransaction}, s.ops...)
	if err := requireAll(actor, "delete "+s.kind, ops); err != nil {
		return err
	}

	res := s.db.Where("id = ?", id).Delete(P(new(T)))
	if res.Error != nil {
		return storeErr(res.Error, apperrors.OpDelete, s.kind)
	}
	if res.RowsAffected == 0 {
		return s.notFound
	}

	s.metrics.LedgerWrite(s.kind, "delete")
	logger.Named("ledger").Infow("transaction deleted", "kind", s.kind, "id", id, "user_id", actor.UserID)
	return nil
}

func (s *ledgerStore[T, P]) list(actor access.Actor, filter TransactionFilter, scope func(q *gorm.DB) *gorm.DB) ([]T, error) {
	if err := requireAll(actor, "list "+s.kind, s.ops); err != nil {
		return nil, err
	}
	if err := validateRange(filter.From, filter.To); err != nil {
		return nil, err
	}

	q := s.db.Model(P(new(T)))
	if filter.ShiftID != "" {
		q = q.Where("shift_id = ?", filter.ShiftID)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", models.DateOf(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("date <= ?", models.DateOf(*filter.To))
	}
	q = visibleShifts(s.db, q, actor)
	if scope != nil {
		q = scope(q)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	rows := []T{}
	if err := q.Order("date DESC").Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, storeErr(err, apperrors.OpRead, s.kind+"s")
	}
	return rows, nil
}
