package services

import (
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/metrics"
	"pharmaledger/internal/models"
)

// expenseService handles cash paid out of the drawer against an expense head.
type expenseService struct {
	store *ledgerStore[models.Expense, *models.Expense]
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, m *metrics.Metrics) ExpenseServicer {
	return &expenseService{store: &ledgerStore[models.Expense, *models.Expense]{
		db:       db,
		metrics:  m,
		kind:     "expense",
		notFound: apperrors.WithMessage(apperrors.ErrTransactionNotFound, "Expense not found"),
		check:    checkExpenseHead,
	}}
}

// checkExpenseHead requires the head to exist, and to be enabled unless an
// existing expense keeps the head it already had.
func checkExpenseHead(tx *gorm.DB, row, prev *models.Expense) error {
	if row.ExpenseHeadID == "" {
		return apperrors.Validation("Expense head is required")
	}
	var head models.ExpenseHead
	if err := tx.First(&head, "id = ?", row.ExpenseHeadID).Error; err != nil {
		return lookupErr(err, apperrors.ErrExpenseHeadNotFound, "expense head")
	}
	if head.IsActive {
		return nil
	}
	if prev != nil && prev.ExpenseHeadID == row.ExpenseHeadID {
		return nil
	}
	return apperrors.WithMessage(apperrors.ErrExpenseHeadInactive, "Expense head "+head.Name+" is disabled")
}

func (s *expenseService) AddExpense(actor access.Actor, in ExpenseInput) (*models.Expense, error) {
	return s.store.add(actor, in.EntryInput, func(row *models.Expense) {
		row.ExpenseHeadID = in.ExpenseHeadID
		row.Description = in.Description
	})
}

func (s *expenseService) UpdateExpense(actor access.Actor, id string, in ExpenseInput) (*models.Expense, error) {
	return s.store.update(actor, id, in.EntryInput, func(row *models.Expense) {
		if in.ExpenseHeadID != "" {
			row.ExpenseHeadID = in.ExpenseHeadID
		}
		row.Description = in.Description
	})
}

func (s *expenseService) DeleteExpense(actor access.Actor, id string) error {
	return s.store.delete(actor, id)
}

// ListExpenses returns expenses with their head attached, including
// disabled heads.
func (s *expenseService) ListExpenses(actor access.Actor, filter TransactionFilter) ([]models.Expense, error) {
	return s.store.list(actor, filter, func(q *gorm.DB) *gorm.DB {
		if filter.ExpenseHeadID != "" {
			q = q.Where("expense_head_id = ?", filter.ExpenseHeadID)
		}
		return q.Preload("ExpenseHead")
	})
}
