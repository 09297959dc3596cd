package services

import (
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/metrics"
	"pharmaledger/internal/models"
)

// saleService handles lump sales entered during a shift.
type saleService struct {
	store *ledgerStore[models.Sale, *models.Sale]
}

// NewSaleService creates a new SaleServicer.
func NewSaleService(db *gorm.DB, m *metrics.Metrics) SaleServicer {
	return &saleService{store: &ledgerStore[models.Sale, *models.Sale]{
		db:       db,
		metrics:  m,
		kind:     "sale",
		notFound: apperrors.WithMessage(apperrors.ErrTransactionNotFound, "Sale not found"),
	}}
}

func (s *saleService) AddSale(actor access.Actor, in SaleInput) (*models.Sale, error) {
	return s.store.add(actor, in.EntryInput, func(row *models.Sale) {
		row.Description = in.Description
	})
}

func (s *saleService) UpdateSale(actor access.Actor, id string, in SaleInput) (*models.Sale, error) {
	return s.store.update(actor, id, in.EntryInput, func(row *models.Sale) {
		row.Description = in.Description
	})
}

func (s *saleService) DeleteSale(actor access.Actor, id string) error {
	return s.store.delete(actor, id)
}

func (s *saleService) ListSales(actor access.Actor, filter TransactionFilter) ([]models.Sale, error) {
	return s.store.list(actor, filter, nil)
}
