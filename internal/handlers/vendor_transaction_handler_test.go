package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/models"
	"pharmaledger/internal/services"
)

type mockVendorTxService struct {
	addPurchaseFn   func(actor access.Actor, vendorID string, in services.PurchaseInput) (*models.VendorPurchase, error)
	listPurchasesFn func(actor access.Actor, filter services.TransactionFilter) ([]models.VendorPurchase, error)
	addPaymentFn    func(actor access.Actor, vendorID string, in services.PaymentInput) (*models.VendorPayment, error)
	updateReturnFn  func(actor access.Actor, id string, in services.ReturnInput) (*models.VendorReturn, error)
	deletePaymentFn func(actor access.Actor, id string) error
}

func (m *mockVendorTxService) AddPurchase(actor access.Actor, vendorID string, in services.PurchaseInput) (*models.VendorPurchase, error) {
	if m.addPurchaseFn != nil {
		return m.addPurchaseFn(actor, vendorID, in)
	}
	return &models.VendorPurchase{VendorID: vendorID}, nil
}

func (m *mockVendorTxService) UpdatePurchase(_ access.Actor, id string, _ services.PurchaseInput) (*models.VendorPurchase, error) {
	return &models.VendorPurchase{Base: models.Base{ID: id}}, nil
}

func (m *mockVendorTxService) DeletePurchase(access.Actor, string) error { return nil }

func (m *mockVendorTxService) ListPurchases(actor access.Actor, filter services.TransactionFilter) ([]models.VendorPurchase, error) {
	if m.listPurchasesFn != nil {
		return m.listPurchasesFn(actor, filter)
	}
	return []models.VendorPurchase{}, nil
}

func (m *mockVendorTxService) AddPayment(actor access.Actor, vendorID string, in services.PaymentInput) (*models.VendorPayment, error) {
	if m.addPaymentFn != nil {
		return m.addPaymentFn(actor, vendorID, in)
	}
	return &models.VendorPayment{VendorID: vendorID}, nil
}

func (m *mockVendorTxService) UpdatePayment(_ access.Actor, id string, _ services.PaymentInput) (*models.VendorPayment, error) {
	return &models.VendorPayment{Base: models.Base{ID: id}}, nil
}

func (m *mockVendorTxService) DeletePayment(actor access.Actor, id string) error {
	if m.deletePaymentFn != nil {
		return m.deletePaymentFn(actor, id)
	}
	return nil
}

func (m *mockVendorTxService) ListPayments(access.Actor, services.TransactionFilter) ([]models.VendorPayment, error) {
	return []models.VendorPayment{}, nil
}

func (m *mockVendorTxService) AddReturn(_ access.Actor, vendorID string, _ services.ReturnInput) (*models.VendorReturn, error) {
	return &models.VendorReturn{VendorID: vendorID}, nil
}

func (m *mockVendorTxService) UpdateReturn(actor access.Actor, id string, in services.ReturnInput) (*models.VendorReturn, error) {
	if m.updateReturnFn != nil {
		return m.updateReturnFn(actor, id, in)
	}
	return &models.VendorReturn{Base: models.Base{ID: id}}, nil
}

func (m *mockVendorTxService) DeleteReturn(access.Actor, string) error { return nil }

func (m *mockVendorTxService) ListReturns(access.Actor, services.TransactionFilter) ([]models.VendorReturn, error) {
	return []models.VendorReturn{}, nil
}

var _ services.VendorTransactionServicer = (*mockVendorTxService)(nil)

func setupVendorTxRouter(handler *VendorTransactionHandler, actor access.Actor) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectActor(actor))
	auth.POST("/vendors/:id/purchases", handler.AddPurchase)
	auth.GET("/vendors/:id/purchases", handler.ListPurchases)
	auth.POST("/vendors/:id/payments", handler.AddPayment)
	auth.POST("/vendors/:id/returns", handler.AddReturn)
	auth.PUT("/vendor-returns/:id", handler.UpdateReturn)
	auth.DELETE("/vendor-payments/:id", handler.DeletePayment)
	return r
}

func TestVendorTransactionHandler_AddPurchase(t *testing.T) {
	var gotVendor string
	var got services.PurchaseInput
	audit := &mockAuditService{}
	txSvc := &mockVendorTxService{
		addPurchaseFn: func(_ access.Actor, vendorID string, in services.PurchaseInput) (*models.VendorPurchase, error) {
			gotVendor, got = vendorID, in
			return &models.VendorPurchase{
				Base:          models.Base{ID: "p1"},
				LedgerFields:  models.LedgerFields{Amount: in.Amount},
				VendorID:      vendorID,
				InvoiceNumber: in.InvoiceNumber,
			}, nil
		},
	}
	r := setupVendorTxRouter(NewVendorTransactionHandler(txSvc, audit), actorWithRole(models.RoleEveningUser))

	rec := doRequest(r, "POST", "/vendors/v1/purchases", `{"amount":"2000","invoice_number":"INV-7"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotVendor != "v1" || got.InvoiceNumber != "INV-7" || !got.Amount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("unexpected arguments vendor=%s in=%+v", gotVendor, got)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "CREATE_VENDOR_PURCHASE" {
		t.Errorf("expected CREATE_VENDOR_PURCHASE audit, got %v", audit.actions)
	}
}

func TestVendorTransactionHandler_ListPurchases(t *testing.T) {
	var got services.TransactionFilter
	txSvc := &mockVendorTxService{
		listPurchasesFn: func(_ access.Actor, filter services.TransactionFilter) ([]models.VendorPurchase, error) {
			got = filter
			return []models.VendorPurchase{}, nil
		},
	}
	r := setupVendorTxRouter(NewVendorTransactionHandler(txSvc, &mockAuditService{}), actorWithRole(models.RoleOwner))

	rec := doRequest(r, "GET", "/vendors/v1/purchases?from=2026-10-01", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.VendorID != "v1" || got.From == nil {
		t.Errorf("expected vendor-scoped filter, got %+v", got)
	}
}

func TestVendorTransactionHandler_AddPayment(t *testing.T) {
	t.Run("returns 403 for shift users", func(t *testing.T) {
		txSvc := &mockVendorTxService{
			addPaymentFn: func(actor access.Actor, _ string, _ services.PaymentInput) (*models.VendorPayment, error) {
				return nil, apperrors.Denied("Permission denied: %s cannot record vendor payments.", actor.Role)
			},
		}
		r := setupVendorTxRouter(NewVendorTransactionHandler(txSvc, &mockAuditService{}), actorWithRole(models.RoleMorningUser))

		rec := doRequest(r, "POST", "/vendors/v1/payments", `{"amount":"500"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PERMISSION_DENIED")
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		r := setupVendorTxRouter(NewVendorTransactionHandler(&mockVendorTxService{}, &mockAuditService{}), actorWithRole(models.RoleOwner))

		rec := doRequest(r, "POST", "/vendors/v1/payments", `{"amount":"0.00"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestVendorTransactionHandler_UpdateAndDelete(t *testing.T) {
	audit := &mockAuditService{}
	txSvc := &mockVendorTxService{
		updateReturnFn: func(_ access.Actor, id string, in services.ReturnInput) (*models.VendorReturn, error) {
			if in.Reason != "expired" {
				t.Errorf("expected reason to pass through, got %q", in.Reason)
			}
			return &models.VendorReturn{Base: models.Base{ID: id}, Reason: in.Reason}, nil
		},
		deletePaymentFn: func(_ access.Actor, id string) error {
			return apperrors.ErrTransactionNotFound
		},
	}
	r := setupVendorTxRouter(NewVendorTransactionHandler(txSvc, audit), actorWithRole(models.RoleOwner))

	rec := doRequest(r, "PUT", "/vendor-returns/r1", `{"amount":"200","reason":"expired"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, "DELETE", "/vendor-payments/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")

	if len(audit.actions) != 1 || audit.actions[0] != "UPDATE_VENDOR_RETURN" {
		t.Errorf("expected only UPDATE_VENDOR_RETURN audit, got %v", audit.actions)
	}
}
