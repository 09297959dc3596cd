package services

import (
	"strings"

	"gorm.io/gorm"

	"pharmaledger/internal/access"
	"pharmaledger/internal/database"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/logger"
	"pharmaledger/internal/models"
)

// expenseHeadService handles expense head master data.
type expenseHeadService struct {
	db *gorm.DB
}

// NewExpenseHeadService creates a new ExpenseHeadServicer.
func NewExpenseHeadService(db *gorm.DB) ExpenseHeadServicer {
	return &expenseHeadService{db: db}
}

func (s *expenseHeadService) CreateExpenseHead(actor access.Actor, name, description string) (*models.ExpenseHead, error) {
	if err := access.Require(actor, access.ManageMasterData); err != nil {
		return nil, denied(actor, "create expense head", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("Name is required")
	}

	head := &models.ExpenseHead{
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedBy:   actor.UserID,
	}
	if err := s.db.Create(head).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateExpenseHead
		}
		return nil, storeErr(err, apperrors.OpCreate, "expense head")
	}
	logger.Named("masterdata").Infow("expense head created", "id", head.ID, "name", head.Name, "user_id", actor.UserID)
	return head, nil
}

func (s *expenseHeadService) UpdateExpenseHead(actor access.Actor, id, name, description string) (*models.ExpenseHead, error) {
	if err := access.Require(actor, access.ManageMasterData); err != nil {
		return nil, denied(actor, "update expense head", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("Name is required")
	}

	head, err := s.GetExpenseHead(id)
	if err != nil {
		return nil, err
	}
	head.Name = name
	head.Description = description
	if err := s.db.Save(head).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateExpenseHead
		}
		return nil, storeErr(err, apperrors.OpUpdate, "expense head")
	}
	return head, nil
}

// SetExpenseHeadActive enables or disables a head. Expenses already booked
// against a disabled head are untouched.
func (s *expenseHeadService) SetExpenseHeadActive(actor access.Actor, id string, active bool) (*models.ExpenseHead, error) {
	if err := access.Require(actor, access.ManageMasterData); err != nil {
		return nil, denied(actor, "toggle expense head", err)
	}
	head, err := s.GetExpenseHead(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(head).Update("is_active", active).Error; err != nil {
		return nil, storeErr(err, apperrors.OpUpdate, "expense head")
	}
	head.IsActive = active
	return head, nil
}

func (s *expenseHeadService) ListExpenseHeads(includeInactive bool) ([]models.ExpenseHead, error) {
	q := s.db.Model(&models.ExpenseHead{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	heads := []models.ExpenseHead{}
	if err := q.Order("name ASC").Find(&heads).Error; err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "expense heads", err)
	}
	return heads, nil
}

func (s *expenseHeadService) GetExpenseHead(id string) (*models.ExpenseHead, error) {
	var head models.ExpenseHead
	if err := s.db.First(&head, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, apperrors.ErrExpenseHeadNotFound, "expense head")
	}
	return &head, nil
}
