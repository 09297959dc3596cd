package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/services"
)

// VendorTransactionHandler handles vendor purchases, payments and returns.
type VendorTransactionHandler struct {
	txService    services.VendorTransactionServicer
	auditService services.AuditServicer
}

// NewVendorTransactionHandler creates a new VendorTransactionHandler.
func NewVendorTransactionHandler(txService services.VendorTransactionServicer, auditService services.AuditServicer) *VendorTransactionHandler {
	return &VendorTransactionHandler{txService: txService, auditService: auditService}
}

// PurchaseRequest represents a vendor purchase on account.
type PurchaseRequest struct {
	EntryRequest
	InvoiceNumber string `json:"invoice_number" binding:"max=100"`
	Notes         string `json:"notes" binding:"max=500"`
}

func (r PurchaseRequest) input() (services.PurchaseInput, error) {
	entry, err := r.entry()
	if err != nil {
		return services.PurchaseInput{}, err
	}
	return services.PurchaseInput{EntryInput: entry, InvoiceNumber: r.InvoiceNumber, Notes: r.Notes}, nil
}

// PaymentRequest represents a cash payment to a vendor.
type PaymentRequest struct {
	EntryRequest
	PaymentMethod string `json:"payment_method" binding:"max=50"`
	Reference     string `json:"reference" binding:"max=100"`
	Notes         string `json:"notes" binding:"max=500"`
}

func (r PaymentRequest) input() (services.PaymentInput, error) {
	entry, err := r.entry()
	if err != nil {
		return services.PaymentInput{}, err
	}
	return services.PaymentInput{EntryInput: entry, PaymentMethod: r.PaymentMethod, Reference: r.Reference, Notes: r.Notes}, nil
}

// ReturnRequest represents stock returned to a vendor.
type ReturnRequest struct {
	EntryRequest
	Reason string `json:"reason" binding:"max=500"`
}

func (r ReturnRequest) input() (services.ReturnInput, error) {
	entry, err := r.entry()
	if err != nil {
		return services.ReturnInput{}, err
	}
	return services.ReturnInput{EntryInput: entry, Reason: r.Reason}, nil
}

// vendorFilter reads the listing filter scoped to the vendor in the path.
func vendorFilter(c *gin.Context) (services.TransactionFilter, error) {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		return filter, err
	}
	filter.VendorID = c.Param("id")
	return filter, nil
}

// AddPurchase handles recording a purchase.
// @Summary     Record a vendor purchase
// @Description Stock bought on account; raises the vendor payable, does not touch the drawer
// @Tags        vendor-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Vendor ID"
// @Param       request body PurchaseRequest true "Purchase"
// @Success     201 {object} Response{data=models.VendorPurchase} "Purchase recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or disabled vendor"
// @Failure     409 {object} ErrorResponse "Shift closed or no shift open"
// @Router      /vendors/{id}/purchases [post]
func (h *VendorTransactionHandler) AddPurchase(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	purchase, err := h.txService.AddPurchase(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_VENDOR_PURCHASE", "vendor_purchase", purchase.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"vendor_id": purchase.VendorID, "invoice_number": purchase.InvoiceNumber}))

	respond(c, http.StatusCreated, "Purchase recorded", purchase)
}

// ListPurchases handles listing a vendor's purchases.
// @Summary     List vendor purchases
// @Tags        vendor-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Vendor ID"
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to   query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} Response{data=[]models.VendorPurchase} "Purchases, newest first"
// @Router      /vendors/{id}/purchases [get]
func (h *VendorTransactionHandler) ListPurchases(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := vendorFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	purchases, err := h.txService.ListPurchases(actor, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", purchases)
}

// UpdatePurchase handles editing a purchase.
// @Summary     Edit a vendor purchase
// @Tags        vendor-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Purchase ID"
// @Param       request body PurchaseRequest true "Purchase"
// @Success     200 {object} Response{data=models.VendorPurchase} "Purchase updated"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Purchase not found"
// @Router      /vendor-purchases/{id} [put]
func (h *VendorTransactionHandler) UpdatePurchase(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	purchase, err := h.txService.UpdatePurchase(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_VENDOR_PURCHASE", "vendor_purchase", purchase.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"invoice_number": purchase.InvoiceNumber}))

	respond(c, http.StatusOK, "Purchase updated", purchase)
}

// DeletePurchase handles deleting a purchase.
// @Summary     Delete a vendor purchase
// @Tags        vendor-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Purchase ID"
// @Success     200 {object} Response "Purchase deleted"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Purchase not found"
// @Router      /vendor-purchases/{id} [delete]
func (h *VendorTransactionHandler) DeletePurchase(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.txService.DeletePurchase(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "DELETE_VENDOR_PURCHASE", "vendor_purchase", id, c.ClientIP(), nil)

	respond(c, http.StatusOK, "Purchase deleted", nil)
}

// AddPayment handles recording a payment.
// @Summary     Record a vendor payment
// @Description Cash paid to a vendor out of the drawer (Owner, Accountant or Super User)
// @Tags        vendor-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Vendor ID"
// @Param       request body PaymentRequest true "Payment"
// @Success     201 {object} Response{data=models.VendorPayment} "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or disabled vendor"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     409 {object} ErrorResponse "Shift closed or no shift open"
// @Router      /vendors/{id}/payments [post]
func (h *VendorTransactionHandler) AddPayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.txService.AddPayment(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_VENDOR_PAYMENT", "vendor_payment", payment.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"vendor_id": payment.VendorID, "reference": payment.Reference}))

	respond(c, http.StatusCreated, "Payment recorded", payment)
}

// ListPayments handles listing a vendor's payments.
// @Summary     List vendor payments
// @Tags        vendor-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Vendor ID"
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to   query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} Response{data=[]models.VendorPayment} "Payments, newest first"
// @Router      /vendors/{id}/payments [get]
func (h *VendorTransactionHandler) ListPayments(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := vendorFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payments, err := h.txService.ListPayments(actor, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", payments)
}

// UpdatePayment handles editing a payment.
// @Summary     Edit a vendor payment
// @Tags        vendor-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Payment ID"
// @Param       request body PaymentRequest true "Payment"
// @Success     200 {object} Response{data=models.VendorPayment} "Payment updated"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Router      /vendor-payments/{id} [put]
func (h *VendorTransactionHandler) UpdatePayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.txService.UpdatePayment(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_VENDOR_PAYMENT", "vendor_payment", payment.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"reference": payment.Reference}))

	respond(c, http.StatusOK, "Payment updated", payment)
}

// DeletePayment handles deleting a payment.
// @Summary     Delete a vendor payment
// @Tags        vendor-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payment ID"
// @Success     200 {object} Response "Payment deleted"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Router      /vendor-payments/{id} [delete]
func (h *VendorTransactionHandler) DeletePayment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.txService.DeletePayment(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "DELETE_VENDOR_PAYMENT", "vendor_payment", id, c.ClientIP(), nil)

	respond(c, http.StatusOK, "Payment deleted", nil)
}

// AddReturn handles recording a return.
// @Summary     Record a vendor return
// @Description Stock sent back to a vendor; lowers the payable, does not touch the drawer
// @Tags        vendor-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Vendor ID"
// @Param       request body ReturnRequest true "Return"
// @Success     201 {object} Response{data=models.VendorReturn} "Return recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or disabled vendor"
// @Failure     409 {object} ErrorResponse "Shift closed or no shift open"
// @Router      /vendors/{id}/returns [post]
func (h *VendorTransactionHandler) AddReturn(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	ret, err := h.txService.AddReturn(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_VENDOR_RETURN", "vendor_return", ret.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"vendor_id": ret.VendorID, "reason": ret.Reason}))

	respond(c, http.StatusCreated, "Return recorded", ret)
}

// ListReturns handles listing a vendor's returns.
// @Summary     List vendor returns
// @Tags        vendor-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Vendor ID"
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to   query string false "End date (YYYY-MM-DD)"
// @Success     200 {object} Response{data=[]models.VendorReturn} "Returns, newest first"
// @Router      /vendors/{id}/returns [get]
func (h *VendorTransactionHandler) ListReturns(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := vendorFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	returns, err := h.txService.ListReturns(actor, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", returns)
}

// UpdateReturn handles editing a return.
// @Summary     Edit a vendor return
// @Tags        vendor-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Return ID"
// @Param       request body ReturnRequest true "Return"
// @Success     200 {object} Response{data=models.VendorReturn} "Return updated"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Return not found"
// @Router      /vendor-returns/{id} [put]
func (h *VendorTransactionHandler) UpdateReturn(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	ret, err := h.txService.UpdateReturn(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_VENDOR_RETURN", "vendor_return", ret.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"reason": ret.Reason}))

	respond(c, http.StatusOK, "Return updated", ret)
}

// DeleteReturn handles deleting a return.
// @Summary     Delete a vendor return
// @Tags        vendor-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Return ID"
// @Success     200 {object} Response "Return deleted"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Return not found"
// @Router      /vendor-returns/{id} [delete]
func (h *VendorTransactionHandler) DeleteReturn(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.txService.DeleteReturn(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "DELETE_VENDOR_RETURN", "vendor_return", id, c.ClientIP(), nil)

	respond(c, http.StatusOK, "Return deleted", nil)
}
