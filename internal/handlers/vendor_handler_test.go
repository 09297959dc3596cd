package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/models"
	"pharmaledger/internal/services"
)

type mockVendorService struct {
	createVendorFn    func(actor access.Actor, in services.VendorInput, opening decimal.Decimal) (*models.Vendor, error)
	updateVendorFn    func(actor access.Actor, id string, in services.VendorInput) (*models.Vendor, error)
	setVendorActiveFn func(actor access.Actor, id string, active bool) (*models.Vendor, error)
	getVendorFn       func(id string) (*models.Vendor, error)
	listVendorsFn     func(includeInactive bool) ([]models.Vendor, error)
	currentBalanceFn  func(vendorID string) (decimal.Decimal, error)
	ledgerFn          func(actor access.Actor, vendorID string, from, to *time.Time) (*services.VendorLedger, error)
}

func (m *mockVendorService) CreateVendor(actor access.Actor, in services.VendorInput, opening decimal.Decimal) (*models.Vendor, error) {
	if m.createVendorFn != nil {
		return m.createVendorFn(actor, in, opening)
	}
	return nil, apperrors.ErrInternalServer
}

func (m *mockVendorService) UpdateVendor(actor access.Actor, id string, in services.VendorInput) (*models.Vendor, error) {
	if m.updateVendorFn != nil {
		return m.updateVendorFn(actor, id, in)
	}
	return nil, apperrors.ErrInternalServer
}

func (m *mockVendorService) SetVendorActive(actor access.Actor, id string, active bool) (*models.Vendor, error) {
	if m.setVendorActiveFn != nil {
		return m.setVendorActiveFn(actor, id, active)
	}
	return nil, apperrors.ErrInternalServer
}

func (m *mockVendorService) GetVendor(id string) (*models.Vendor, error) {
	if m.getVendorFn != nil {
		return m.getVendorFn(id)
	}
	return nil, apperrors.ErrVendorNotFound
}

func (m *mockVendorService) ListVendors(includeInactive bool) ([]models.Vendor, error) {
	if m.listVendorsFn != nil {
		return m.listVendorsFn(includeInactive)
	}
	return nil, nil
}

func (m *mockVendorService) CurrentBalance(vendorID string) (decimal.Decimal, error) {
	if m.currentBalanceFn != nil {
		return m.currentBalanceFn(vendorID)
	}
	return decimal.Zero, nil
}

func (m *mockVendorService) Ledger(actor access.Actor, vendorID string, from, to *time.Time) (*services.VendorLedger, error) {
	if m.ledgerFn != nil {
		return m.ledgerFn(actor, vendorID, from, to)
	}
	return &services.VendorLedger{}, nil
}

var _ services.VendorServicer = (*mockVendorService)(nil)

type mockExpenseHeadService struct {
	createFn    func(actor access.Actor, name, description string) (*models.ExpenseHead, error)
	updateFn    func(actor access.Actor, id, name, description string) (*models.ExpenseHead, error)
	setActiveFn func(actor access.Actor, id string, active bool) (*models.ExpenseHead, error)
	listFn      func(includeInactive bool) ([]models.ExpenseHead, error)
}

func (m *mockExpenseHeadService) CreateExpenseHead(actor access.Actor, name, description string) (*models.ExpenseHead, error) {
	if m.createFn != nil {
		return m.createFn(actor, name, description)
	}
	return nil, apperrors.ErrInternalServer
}

func (m *mockExpenseHeadService) UpdateExpenseHead(actor access.Actor, id, name, description string) (*models.ExpenseHead, error) {
	if m.updateFn != nil {
		return m.updateFn(actor, id, name, description)
	}
	return nil, apperrors.ErrInternalServer
}

func (m *mockExpenseHeadService) SetExpenseHeadActive(actor access.Actor, id string, active bool) (*models.ExpenseHead, error) {
	if m.setActiveFn != nil {
		return m.setActiveFn(actor, id, active)
	}
	return nil, apperrors.ErrExpenseHeadNotFound
}

func (m *mockExpenseHeadService) ListExpenseHeads(includeInactive bool) ([]models.ExpenseHead, error) {
	if m.listFn != nil {
		return m.listFn(includeInactive)
	}
	return nil, nil
}

func (m *mockExpenseHeadService) GetExpenseHead(id string) (*models.ExpenseHead, error) {
	return nil, apperrors.ErrExpenseHeadNotFound
}

var _ services.ExpenseHeadServicer = (*mockExpenseHeadService)(nil)

func setupMasterDataRouter(vendors *VendorHandler, heads *ExpenseHeadHandler, actor access.Actor) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectActor(actor))
	auth.POST("/vendors", vendors.CreateVendor)
	auth.GET("/vendors", vendors.ListVendors)
	auth.GET("/vendors/:id", vendors.GetVendor)
	auth.POST("/vendors/:id/active", vendors.SetVendorActive)
	auth.GET("/vendors/:id/balance", vendors.GetBalance)
	auth.GET("/vendors/:id/ledger", vendors.GetLedger)
	auth.POST("/expense-heads", heads.CreateExpenseHead)
	auth.GET("/expense-heads", heads.ListExpenseHeads)
	auth.POST("/expense-heads/:id/active", heads.SetExpenseHeadActive)
	return r
}

func TestVendorHandler_CreateVendor(t *testing.T) {
	t.Run("returns 201 with opening balance", func(t *testing.T) {
		var gotOpening decimal.Decimal
		var gotInput services.VendorInput
		audit := &mockAuditService{}
		vendorSvc := &mockVendorService{
			createVendorFn: func(_ access.Actor, in services.VendorInput, opening decimal.Decimal) (*models.Vendor, error) {
				gotInput, gotOpening = in, opening
				return &models.Vendor{Base: models.Base{ID: "v1"}, Name: in.Name, OpeningBalance: opening, IsActive: true}, nil
			},
		}
		h := NewVendorHandler(vendorSvc, audit)
		r := setupMasterDataRouter(h, NewExpenseHeadHandler(&mockExpenseHeadService{}, audit), actorWithRole(models.RoleAccountant))

		rec := doRequest(r, "POST", "/vendors", `{"name":"MedSupply","phone":"0300","opening_balance":"3000.00"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotOpening.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("expected opening 3000, got %s", gotOpening)
		}
		if gotInput.Name != "MedSupply" || gotInput.Phone != "0300" {
			t.Errorf("unexpected input %+v", gotInput)
		}
		if parseJSON(t, rec)["message"] != "Vendor MedSupply created" {
			t.Errorf("unexpected message %v", parseJSON(t, rec)["message"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != "CREATE_VENDOR" {
			t.Errorf("expected CREATE_VENDOR audit, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on missing name or bad email", func(t *testing.T) {
		for _, body := range []string{`{"phone":"0300"}`, `{"name":"X","email":"not-an-email"}`} {
			r := setupMasterDataRouter(NewVendorHandler(&mockVendorService{}, &mockAuditService{}),
				NewExpenseHeadHandler(&mockExpenseHeadService{}, &mockAuditService{}), actorWithRole(models.RoleOwner))

			rec := doRequest(r, "POST", "/vendors", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "VALIDATION_ERROR")
		}
	})
}

func TestVendorHandler_Reads(t *testing.T) {
	vendorSvc := &mockVendorService{
		listVendorsFn: func(includeInactive bool) ([]models.Vendor, error) {
			if !includeInactive {
				t.Error("expected include_inactive=true")
			}
			return []models.Vendor{{Name: "A"}, {Name: "B"}}, nil
		},
		currentBalanceFn: func(id string) (decimal.Decimal, error) {
			if id != "v1" {
				return decimal.Zero, apperrors.ErrVendorNotFound
			}
			return decimal.NewFromInt(2300), nil
		},
		ledgerFn: func(_ access.Actor, _ string, from, to *time.Time) (*services.VendorLedger, error) {
			if from == nil || to != nil {
				t.Errorf("expected only from, got %v %v", from, to)
			}
			return &services.VendorLedger{Vendor: &models.Vendor{Base: models.Base{ID: "v1"}}}, nil
		},
	}
	r := setupMasterDataRouter(NewVendorHandler(vendorSvc, &mockAuditService{}),
		NewExpenseHeadHandler(&mockExpenseHeadService{}, &mockAuditService{}), actorWithRole(models.RoleEveningUser))

	t.Run("lists vendors", func(t *testing.T) {
		rec := doRequest(r, "GET", "/vendors?include_inactive=true", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if data, ok := parseJSON(t, rec)["data"].([]any); !ok || len(data) != 2 {
			t.Errorf("expected 2 vendors, got %v", parseJSON(t, rec)["data"])
		}
	})

	t.Run("balance is a decimal string", func(t *testing.T) {
		rec := doRequest(r, "GET", "/vendors/v1/balance", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if dataObject(t, parseJSON(t, rec))["current_balance"] != "2300" {
			t.Errorf("unexpected balance %v", parseJSON(t, rec)["data"])
		}
	})

	t.Run("balance of unknown vendor is 404", func(t *testing.T) {
		rec := doRequest(r, "GET", "/vendors/zzz/balance", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "VENDOR_NOT_FOUND")
	})

	t.Run("get unknown vendor is 404", func(t *testing.T) {
		rec := doRequest(r, "GET", "/vendors/zzz", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("ledger passes the window", func(t *testing.T) {
		rec := doRequest(r, "GET", "/vendors/v1/ledger?from=2026-10-01", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("ledger rejects a bad date", func(t *testing.T) {
		rec := doRequest(r, "GET", "/vendors/v1/ledger?from=yesterday", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSetActive(t *testing.T) {
	t.Run("disables a vendor", func(t *testing.T) {
		audit := &mockAuditService{}
		vendorSvc := &mockVendorService{
			setVendorActiveFn: func(_ access.Actor, id string, active bool) (*models.Vendor, error) {
				return &models.Vendor{Base: models.Base{ID: id}, IsActive: active}, nil
			},
		}
		r := setupMasterDataRouter(NewVendorHandler(vendorSvc, audit),
			NewExpenseHeadHandler(&mockExpenseHeadService{}, audit), actorWithRole(models.RoleOwner))

		rec := doRequest(r, "POST", "/vendors/v1/active", `{"active":false}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["message"] != "Vendor disabled" {
			t.Errorf("unexpected message %v", parseJSON(t, rec)["message"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != "SET_VENDOR_ACTIVE" {
			t.Errorf("expected SET_VENDOR_ACTIVE audit, got %v", audit.actions)
		}
	})

	t.Run("missing flag is 400", func(t *testing.T) {
		r := setupMasterDataRouter(NewVendorHandler(&mockVendorService{}, &mockAuditService{}),
			NewExpenseHeadHandler(&mockExpenseHeadService{}, &mockAuditService{}), actorWithRole(models.RoleOwner))

		rec := doRequest(r, "POST", "/expense-heads/h1/active", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("enables an expense head", func(t *testing.T) {
		audit := &mockAuditService{}
		headSvc := &mockExpenseHeadService{
			setActiveFn: func(_ access.Actor, id string, active bool) (*models.ExpenseHead, error) {
				return &models.ExpenseHead{Base: models.Base{ID: id}, IsActive: active}, nil
			},
		}
		r := setupMasterDataRouter(NewVendorHandler(&mockVendorService{}, audit),
			NewExpenseHeadHandler(headSvc, audit), actorWithRole(models.RoleSuperUser))

		rec := doRequest(r, "POST", "/expense-heads/h1/active", `{"active":true}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["message"] != "Expense head enabled" {
			t.Errorf("unexpected message %v", parseJSON(t, rec)["message"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != "SET_EXPENSE_HEAD_ACTIVE" {
			t.Errorf("expected SET_EXPENSE_HEAD_ACTIVE audit, got %v", audit.actions)
		}
	})
}

func TestExpenseHeadHandler_Create(t *testing.T) {
	t.Run("duplicate name is 409", func(t *testing.T) {
		audit := &mockAuditService{}
		headSvc := &mockExpenseHeadService{
			createFn: func(access.Actor, string, string) (*models.ExpenseHead, error) {
				return nil, apperrors.ErrDuplicateExpenseHead
			},
		}
		r := setupMasterDataRouter(NewVendorHandler(&mockVendorService{}, audit),
			NewExpenseHeadHandler(headSvc, audit), actorWithRole(models.RoleAccountant))

		rec := doRequest(r, "POST", "/expense-heads", `{"name":"Electricity"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EXPENSE_HEAD")
		if len(audit.actions) != 0 {
			t.Errorf("expected no audit, got %v", audit.actions)
		}
	})

	t.Run("returns 201", func(t *testing.T) {
		headSvc := &mockExpenseHeadService{
			createFn: func(_ access.Actor, name, description string) (*models.ExpenseHead, error) {
				return &models.ExpenseHead{Base: models.Base{ID: "h1"}, Name: name, Description: description, IsActive: true}, nil
			},
		}
		r := setupMasterDataRouter(NewVendorHandler(&mockVendorService{}, &mockAuditService{}),
			NewExpenseHeadHandler(headSvc, &mockAuditService{}), actorWithRole(models.RoleAccountant))

		rec := doRequest(r, "POST", "/expense-heads", `{"name":"Electricity","description":"Monthly bill"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["message"] != "Expense head Electricity created" {
			t.Errorf("unexpected message %v", parseJSON(t, rec)["message"])
		}
	})
}
