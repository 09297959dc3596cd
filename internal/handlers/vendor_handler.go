package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pharmaledger/internal/services"
)

// VendorHandler handles vendor master data and the vendor ledger.
type VendorHandler struct {
	vendorService services.VendorServicer
	auditService  services.AuditServicer
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(vendorService services.VendorServicer, auditService services.AuditServicer) *VendorHandler {
	return &VendorHandler{vendorService: vendorService, auditService: auditService}
}

// VendorRequest holds a vendor's editable contact fields.
type VendorRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Phone         string `json:"phone" binding:"max=50"`
	Email         string `json:"email" binding:"omitempty,email,max=255"`
	Address       string `json:"address" binding:"max=500"`
}

func (r VendorRequest) input() services.VendorInput {
	return services.VendorInput{
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
	}
}

// CreateVendorRequest adds the opening balance, which is fixed at creation.
type CreateVendorRequest struct {
	VendorRequest
	OpeningBalance decimal.Decimal `json:"opening_balance" swaggertype:"string" example:"3000.00"`
}

// CreateVendor handles creating a vendor.
// @Summary     Create a vendor
// @Description Create a vendor with the payable owed before the ledger starts
// @Tags        vendors
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateVendorRequest true "Vendor"
// @Success     201 {object} Response{data=models.Vendor} "Vendor created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /vendors [post]
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	vendor, err := h.vendorService.CreateVendor(actor, req.input(), req.OpeningBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_VENDOR", "vendor", vendor.ID, c.ClientIP(),
		map[string]any{"name": vendor.Name, "opening_balance": vendor.OpeningBalance.String()})

	respond(c, http.StatusCreated, "Vendor "+vendor.Name+" created", vendor)
}

// ListVendors handles listing vendors with their current balances.
// @Summary     List vendors
// @Tags        vendors
// @Produce     json
// @Security    BearerAuth
// @Param       include_inactive query bool false "Include disabled vendors"
// @Success     200 {object} Response{data=[]models.Vendor} "Vendors by name"
// @Router      /vendors [get]
func (h *VendorHandler) ListVendors(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	includeInactive, err := parseBoolQuery(c, "include_inactive")
	if err != nil {
		respondWithError(c, err)
		return
	}

	vendors, err := h.vendorService.ListVendors(includeInactive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", vendors)
}

// GetVendor handles fetching one vendor.
// @Summary     Get a vendor
// @Tags        vendors
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Vendor ID"
// @Success     200 {object} Response{data=models.Vendor} "Vendor"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /vendors/{id} [get]
func (h *VendorHandler) GetVendor(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	vendor, err := h.vendorService.GetVendor(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", vendor)
}

// UpdateVendor handles editing a vendor's contact fields.
// @Summary     Update a vendor
// @Description Update contact fields; the opening balance cannot change
// @Tags        vendors
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Vendor ID"
// @Param       request body VendorRequest true "Vendor"
// @Success     200 {object} Response{data=models.Vendor} "Vendor updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /vendors/{id} [put]
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	vendor, err := h.vendorService.UpdateVendor(actor, c.Param("id"), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_VENDOR", "vendor", vendor.ID, c.ClientIP(),
		map[string]any{"name": vendor.Name})

	respond(c, http.StatusOK, "Vendor updated", vendor)
}

// SetVendorActive handles enabling or disabling a vendor.
// @Summary     Enable or disable a vendor
// @Tags        vendors
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Vendor ID"
// @Param       request body SetActiveRequest true "Active flag"
// @Success     200 {object} Response{data=models.Vendor} "Vendor updated"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /vendors/{id}/active [post]
func (h *VendorHandler) SetVendorActive(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	vendor, err := h.vendorService.SetVendorActive(actor, c.Param("id"), *req.Active)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "SET_VENDOR_ACTIVE", "vendor", vendor.ID, c.ClientIP(),
		map[string]any{"active": vendor.IsActive})

	message := "Vendor disabled"
	if vendor.IsActive {
		message = "Vendor enabled"
	}
	respond(c, http.StatusOK, message, vendor)
}

// GetBalance returns a vendor's current balance.
// @Summary     Vendor balance
// @Description Opening balance plus all purchases, less all payments and returns
// @Tags        vendors
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Vendor ID"
// @Success     200 {object} Response "Current balance"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /vendors/{id}/balance [get]
func (h *VendorHandler) GetBalance(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	balance, err := h.vendorService.CurrentBalance(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"vendor_id": id, "current_balance": balance})
}

// GetLedger returns a vendor's windowed ledger with running balances.
// @Summary     Vendor ledger
// @Description Purchases, payments and returns with running balances, newest first
// @Tags        vendors
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Vendor ID"
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to   query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} Response{data=services.VendorLedger} "Ledger"
// @Failure     400 {object} ErrorResponse "Invalid range"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /vendors/{id}/ledger [get]
func (h *VendorHandler) GetLedger(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, err := parseDateQuery(c, "from")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ledger, err := h.vendorService.Ledger(actor, c.Param("id"), from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", ledger)
}
