package services

import (
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/metrics"
	"pharmaledger/internal/models"
)

// vendorTransactionService handles purchases, payments and returns. None of
// them stores a running balance; the vendor balance is derived on read.
type vendorTransactionService struct {
	purchases *ledgerStore[models.VendorPurchase, *models.VendorPurchase]
	payments  *ledgerStore[models.VendorPayment, *models.VendorPayment]
	returns   *ledgerStore[models.VendorReturn, *models.VendorReturn]
}

// NewVendorTransactionService creates a new VendorTransactionServicer.
func NewVendorTransactionService(db *gorm.DB, m *metrics.Metrics) VendorTransactionServicer {
	return &vendorTransactionService{
		purchases: &ledgerStore[models.VendorPurchase, *models.VendorPurchase]{
			db:       db,
			metrics:  m,
			kind:     "vendor purchase",
			notFound: apperrors.WithMessage(apperrors.ErrTransactionNotFound, "Vendor purchase not found"),
			check: func(tx *gorm.DB, row, prev *models.VendorPurchase) error {
				return checkVendor(tx, row.VendorID, prev == nil)
			},
		},
		payments: &ledgerStore[models.VendorPayment, *models.VendorPayment]{
			db:       db,
			metrics:  m,
			kind:     "vendor payment",
			notFound: apperrors.WithMessage(apperrors.ErrTransactionNotFound, "Vendor payment not found"),
			ops:      []access.Operation{access.ManageVendorPayments},
			check: func(tx *gorm.DB, row, prev *models.VendorPayment) error {
				return checkVendor(tx, row.VendorID, prev == nil)
			},
		},
		returns: &ledgerStore[models.VendorReturn, *models.VendorReturn]{
			db:       db,
			metrics:  m,
			kind:     "vendor return",
			notFound: apperrors.WithMessage(apperrors.ErrTransactionNotFound, "Vendor return not found"),
			check: func(tx *gorm.DB, row, prev *models.VendorReturn) error {
				return checkVendor(tx, row.VendorID, prev == nil)
			},
		},
	}
}

// checkVendor requires the vendor to exist, and to be enabled for new rows.
// Edits to existing rows of a disabled vendor stay possible.
func checkVendor(tx *gorm.DB, vendorID string, creating bool) error {
	if vendorID == "" {
		return apperrors.Validation("Vendor is required")
	}
	var vendor models.Vendor
	if err := tx.Select("id", "name", "is_active").First(&vendor, "id = ?", vendorID).Error; err != nil {
		return lookupErr(err, apperrors.ErrVendorNotFound, "vendor")
	}
	if creating && !vendor.IsActive {
		return apperrors.WithMessage(apperrors.ErrVendorInactive, "Vendor "+vendor.Name+" is disabled")
	}
	return nil
}

func byVendor(vendorID string) func(q *gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if vendorID == "" {
			return q
		}
		return q.Where("vendor_id = ?", vendorID)
	}
}

func (s *vendorTransactionService) AddPurchase(actor access.Actor, vendorID string, in PurchaseInput) (*models.VendorPurchase, error) {
	return s.purchases.add(actor, in.EntryInput, func(row *models.VendorPurchase) {
		row.VendorID = vendorID
		row.InvoiceNumber = in.InvoiceNumber
		row.Notes = in.Notes
	})
}

func (s *vendorTransactionService) UpdatePurchase(actor access.Actor, id string, in PurchaseInput) (*models.VendorPurchase, error) {
	return s.purchases.update(actor, id, in.EntryInput, func(row *models.VendorPurchase) {
		row.InvoiceNumber = in.InvoiceNumber
		row.Notes = in.Notes
	})
}

func (s *vendorTransactionService) DeletePurchase(actor access.Actor, id string) error {
	return s.purchases.delete(actor, id)
}

func (s *vendorTransactionService) ListPurchases(actor access.Actor, filter TransactionFilter) ([]models.VendorPurchase, error) {
	return s.purchases.list(actor, filter, byVendor(filter.VendorID))
}

func (s *vendorTransactionService) AddPayment(actor access.Actor, vendorID string, in PaymentInput) (*models.VendorPayment, error) {
	return s.payments.add(actor, in.EntryInput, func(row *models.VendorPayment) {
		row.VendorID = vendorID
		row.PaymentMethod = in.PaymentMethod
		row.Reference = in.Reference
		row.Notes = in.Notes
	})
}

func (s *vendorTransactionService) UpdatePayment(actor access.Actor, id string, in PaymentInput) (*models.VendorPayment, error) {
	return s.payments.update(actor, id, in.EntryInput, func(row *models.VendorPayment) {
		row.PaymentMethod = in.PaymentMethod
		row.Reference = in.Reference
		row.Notes = in.Notes
	})
}

func (s *vendorTransactionService) DeletePayment(actor access.Actor, id string) error {
	return s.payments.delete(actor, id)
}

func (s *vendorTransactionService) ListPayments(actor access.Actor, filter TransactionFilter) ([]models.VendorPayment, error) {
	return s.payments.list(actor, filter, byVendor(filter.VendorID))
}

func (s *vendorTransactionService) AddReturn(actor access.Actor, vendorID string, in ReturnInput) (*models.VendorReturn, error) {
	return s.returns.add(actor, in.EntryInput, func(row *models.VendorReturn) {
		row.VendorID = vendorID
		row.Reason = in.Reason
	})
}

func (s *vendorTransactionService) UpdateReturn(actor access.Actor, id string, in ReturnInput) (*models.VendorReturn, error) {
	return s.returns.update(actor, id, in.EntryInput, func(row *models.VendorReturn) {
		row.Reason = in.Reason
	})
}

func (s *vendorTransactionService) DeleteReturn(actor access.Actor, id string) error {
	return s.returns.delete(actor, id)
}

func (s *vendorTransactionService) ListReturns(actor access.Actor, filter TransactionFilter) ([]models.VendorReturn, error) {
	return s.returns.list(actor, filter, byVendor(filter.VendorID))
}
