package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/services"
)

// SaleHandler handles sales entries.
type SaleHandler struct {
	saleService  services.SaleServicer
	auditService services.AuditServicer
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleService services.SaleServicer, auditService services.AuditServicer) *SaleHandler {
	return &SaleHandler{saleService: saleService, auditService: auditService}
}

// SaleRequest represents the request payload for creating or editing a sale.
type SaleRequest struct {
	EntryRequest
	Description string `json:"description" binding:"max=500"`
}

func (r SaleRequest) input() (services.SaleInput, error) {
	entry, err := r.entry()
	if err != nil {
		return services.SaleInput{}, err
	}
	return services.SaleInput{EntryInput: entry, Description: r.Description}, nil
}

// AddSale handles recording a sale.
// @Summary     Record a sale
// @Description Record a lump sales amount against an open shift
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SaleRequest true "Sale"
// @Success     201 {object} Response{data=models.Sale} "Sale recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     409 {object} ErrorResponse "Shift closed or no shift open"
// @Router      /sales [post]
func (h *SaleHandler) AddSale(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	sale, err := h.saleService.AddSale(actor, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_SALE", "sale", sale.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"shift_id": sale.ShiftID}))

	respond(c, http.StatusCreated, "Sale recorded", sale)
}

// ListSales handles listing sales.
// @Summary     List sales
// @Tags        sales
// @Produce     json
// @Security    BearerAuth
// @Param       shift_id query string false "Shift ID"
// @Param       from     query string false "Start date (YYYY-MM-DD)"
// @Param       to       query string false "End date (YYYY-MM-DD)"
// @Param       limit    query int    false "Maximum rows"
// @Success     200 {object} Response{data=[]models.Sale} "Sales, newest first"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sales, err := h.saleService.ListSales(actor, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", sales)
}

// UpdateSale handles editing a sale.
// @Summary     Edit a sale
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Sale ID"
// @Param       request body SaleRequest true "Sale"
// @Success     200 {object} Response{data=models.Sale} "Sale updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Sale not found"
// @Router      /sales/{id} [put]
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	sale, err := h.saleService.UpdateSale(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_SALE", "sale", sale.ID, c.ClientIP(), entryChanges(in.EntryInput, nil))

	respond(c, http.StatusOK, "Sale updated", sale)
}

// DeleteSale handles deleting a sale.
// @Summary     Delete a sale
// @Tags        sales
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Sale ID"
// @Success     200 {object} Response "Sale deleted"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Sale not found"
// @Router      /sales/{id} [delete]
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.saleService.DeleteSale(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "DELETE_SALE", "sale", id, c.ClientIP(), nil)

	respond(c, http.StatusOK, "Sale deleted", nil)
}
