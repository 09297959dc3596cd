package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/metrics"
	"pharmaledger/internal/models"
)

// personalService handles the owner's withdrawals from and investments into
// the drawer.
type personalService struct {
	db    *gorm.DB
	store *ledgerStore[models.PersonalTransaction, *models.PersonalTransaction]
}

// NewPersonalService creates a new PersonalServicer.
func NewPersonalService(db *gorm.DB, m *metrics.Metrics) PersonalServicer {
	return &personalService{
		db: db,
		store: &ledgerStore[models.PersonalTransaction, *models.PersonalTransaction]{
			db:       db,
			metrics:  m,
			kind:     "personal transaction",
			notFound: apperrors.WithMessage(apperrors.ErrTransactionNotFound, "Personal transaction not found"),
			ops:      []access.Operation{access.ManagePersonal},
			check: func(_ *gorm.DB, row, _ *models.PersonalTransaction) error {
				if !row.Type.Valid() {
					return apperrors.Validation("Type must be withdrawal or investment")
				}
				return nil
			},
		},
	}
}

// Balance is all-time investments minus all-time withdrawals.
func (s *personalService) Balance(actor access.Actor) (decimal.Decimal, error) {
	if err := access.Require(actor, access.ManagePersonal); err != nil {
		return decimal.Zero, denied(actor, "view personal balance", err)
	}
	return personalBalance(s.db)
}

func personalBalance(db *gorm.DB) (decimal.Decimal, error) {
	investments, err := sumAmounts(db, &models.PersonalTransaction{}, "type = ?", models.PersonalInvestment)
	if err != nil {
		return decimal.Zero, apperrors.Store(apperrors.OpRead, "personal transactions", err)
	}
	withdrawals, err := sumAmounts(db, &models.PersonalTransaction{}, "type = ?", models.PersonalWithdrawal)
	if err != nil {
		return decimal.Zero, apperrors.Store(apperrors.OpRead, "personal transactions", err)
	}
	return investments.Sub(withdrawals), nil
}

func (s *personalService) AddPersonal(actor access.Actor, in PersonalInput) (*models.PersonalTransaction, error) {
	return s.store.add(actor, in.EntryInput, func(row *models.PersonalTransaction) {
		row.Type = in.Type
		row.Description = in.Description
	})
}

func (s *personalService) UpdatePersonal(actor access.Actor, id string, in PersonalInput) (*models.PersonalTransaction, error) {
	return s.store.update(actor, id, in.EntryInput, func(row *models.PersonalTransaction) {
		if in.Type != "" {
			row.Type = in.Type
		}
		row.Description = in.Description
	})
}

func (s *personalService) DeletePersonal(actor access.Actor, id string) error {
	return s.store.delete(actor, id)
}

func (s *personalService) ListPersonal(actor access.Actor, filter TransactionFilter) ([]models.PersonalTransaction, error) {
	return s.store.list(actor, filter, func(q *gorm.DB) *gorm.DB {
		if filter.PersonalType != "" {
			q = q.Where("type = ?", filter.PersonalType)
		}
		return q
	})
}
