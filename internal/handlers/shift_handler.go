package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/models"
	"pharmaledger/internal/money"
	"pharmaledger/internal/services"
)

// ShiftHandler handles the shift open/close lifecycle.
type ShiftHandler struct {
	shiftService services.ShiftServicer
	auditService services.AuditServicer
	currency     string
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(shiftService services.ShiftServicer, auditService services.AuditServicer, currency string) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService, auditService: auditService, currency: currency}
}

// OpenShiftRequest represents the request payload for opening a shift.
type OpenShiftRequest struct {
	ShiftType models.ShiftType `json:"shift_type" binding:"required,shift_type"`
}

// CloseShiftRequest represents the request payload for closing a shift.
type CloseShiftRequest struct {
	ClosingCash decimal.NullDecimal `json:"closing_cash" swaggertype:"string" example:"13800.00" binding:"required,money_gte0"`
}

// OpenShift handles opening a shift.
// @Summary     Open a shift
// @Description Open a shift of the given type with the configured opening cash
// @Tags        shifts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body OpenShiftRequest true "Shift type"
// @Success     201 {object} Response{data=models.ShiftInstance} "Shift opened"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     409 {object} ErrorResponse "Shift already open"
// @Router      /shifts/open [post]
func (h *ShiftHandler) OpenShift(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	shift, err := h.shiftService.OpenShift(actor, req.ShiftType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "OPEN_SHIFT", "shift", shift.ID, c.ClientIP(),
		map[string]any{"shift_type": shift.ShiftType, "opening_cash": shift.OpeningCash})

	respond(c, http.StatusCreated,
		fmt.Sprintf("The %s shift is open with %s", shift.ShiftType, money.Format(h.currency, shift.OpeningCash)),
		shift)
}

// CloseShift handles closing a shift.
// @Summary     Close a shift
// @Description Close an open shift with the counted cash; expected cash and variance are computed
// @Tags        shifts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Shift ID"
// @Param       request body CloseShiftRequest true "Counted cash"
// @Success     200 {object} Response{data=models.ShiftInstance} "Shift closed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Shift not found"
// @Failure     409 {object} ErrorResponse "Shift already closed"
// @Router      /shifts/{id}/close [post]
func (h *ShiftHandler) CloseShift(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	shift, err := h.shiftService.CloseShift(actor, c.Param("id"), req.ClosingCash.Decimal)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CLOSE_SHIFT", "shift", shift.ID, c.ClientIP(), map[string]any{
		"closing_cash":  shift.ClosingCash,
		"expected_cash": shift.ExpectedCash,
		"variance":      shift.Variance,
	})

	respond(c, http.StatusOK, h.closeMessage(shift), shift)
}

func (h *ShiftHandler) closeMessage(shift *models.ShiftInstance) string {
	if shift.ExpectedCash == nil || shift.Variance == nil {
		return fmt.Sprintf("The %s shift is closed", shift.ShiftType)
	}
	return fmt.Sprintf("The %s shift is closed. Expected %s, variance %s",
		shift.ShiftType,
		money.Format(h.currency, *shift.ExpectedCash),
		money.Format(h.currency, *shift.Variance))
}

// GetOpenShift returns the open shift of a type, if any.
// @Summary     Get the open shift of a type
// @Tags        shifts
// @Produce     json
// @Security    BearerAuth
// @Param       type path string true "Shift type (morning, evening, night)"
// @Success     200 {object} Response{data=models.ShiftInstance} "Open shift, or no data when none is open"
// @Failure     400 {object} ErrorResponse "Unknown shift type"
// @Router      /shifts/open/{type} [get]
func (h *ShiftHandler) GetOpenShift(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	shiftType := models.ShiftType(c.Param("type"))
	if !shiftType.Valid() {
		respondWithError(c, apperrors.Validation("Unknown shift type %q", shiftType))
		return
	}

	shift, err := h.shiftService.GetOpenShift(shiftType)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if shift == nil {
		respond(c, http.StatusOK, fmt.Sprintf("No %s shift is open", shiftType), nil)
		return
	}

	respond(c, http.StatusOK, "", shift)
}

// ListOpenShifts lists the open shifts the caller may work on.
// @Summary     List open shifts
// @Tags        shifts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=[]models.ShiftInstance} "Open shifts"
// @Router      /shifts/open [get]
func (h *ShiftHandler) ListOpenShifts(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	shifts, err := h.shiftService.ListOpenShifts(actor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", shifts)
}

// GetShift returns a shift by ID.
// @Summary     Get a shift
// @Tags        shifts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Shift ID"
// @Success     200 {object} Response{data=models.ShiftInstance} "Shift"
// @Failure     404 {object} ErrorResponse "Shift not found"
// @Router      /shifts/{id} [get]
func (h *ShiftHandler) GetShift(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	shift, err := h.shiftService.GetShift(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", shift)
}

// GetSummary returns a shift's raw sums and expected cash.
// @Summary     Shift summary
// @Tags        shifts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Shift ID"
// @Success     200 {object} Response{data=services.ShiftSummary} "Shift summary"
// @Failure     404 {object} ErrorResponse "Shift not found"
// @Router      /shifts/{id}/summary [get]
func (h *ShiftHandler) GetSummary(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.shiftService.Summarize(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", summary)
}

// GetExpectedCash returns the cash the drawer should hold right now.
// @Summary     Expected cash
// @Tags        shifts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Shift ID"
// @Success     200 {object} Response "Expected cash"
// @Failure     404 {object} ErrorResponse "Shift not found"
// @Router      /shifts/{id}/expected-cash [get]
func (h *ShiftHandler) GetExpectedCash(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	expected, err := h.shiftService.ExpectedCash(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, money.Format(h.currency, expected), gin.H{"expected_cash": expected})
}
