package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/services"
)

// ExpenseHeadHandler handles expense head master data.
type ExpenseHeadHandler struct {
	headService  services.ExpenseHeadServicer
	auditService services.AuditServicer
}

// NewExpenseHeadHandler creates a new ExpenseHeadHandler.
func NewExpenseHeadHandler(headService services.ExpenseHeadServicer, auditService services.AuditServicer) *ExpenseHeadHandler {
	return &ExpenseHeadHandler{headService: headService, auditService: auditService}
}

// ExpenseHeadRequest represents the request payload for creating or renaming an expense head.
type ExpenseHeadRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// SetActiveRequest enables or disables a master data record.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// CreateExpenseHead handles creating an expense head.
// @Summary     Create an expense head
// @Tags        expense-heads
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseHeadRequest true "Expense head"
// @Success     201 {object} Response{data=models.ExpenseHead} "Expense head created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     409 {object} ErrorResponse "Name already used"
// @Router      /expense-heads [post]
func (h *ExpenseHeadHandler) CreateExpenseHead(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	head, err := h.headService.CreateExpenseHead(actor, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_EXPENSE_HEAD", "expense_head", head.ID, c.ClientIP(),
		map[string]any{"name": head.Name})

	respond(c, http.StatusCreated, "Expense head "+head.Name+" created", head)
}

// ListExpenseHeads handles listing expense heads.
// @Summary     List expense heads
// @Tags        expense-heads
// @Produce     json
// @Security    BearerAuth
// @Param       include_inactive query bool false "Include disabled heads"
// @Success     200 {object} Response{data=[]models.ExpenseHead} "Expense heads by name"
// @Router      /expense-heads [get]
func (h *ExpenseHeadHandler) ListExpenseHeads(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		respondWithError(c, err)
		return
	}

	includeInactive, err := parseBoolQuery(c, "include_inactive")
	if err != nil {
		respondWithError(c, err)
		return
	}

	heads, err := h.headService.ListExpenseHeads(includeInactive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", heads)
}

// UpdateExpenseHead handles renaming an expense head.
// @Summary     Update an expense head
// @Tags        expense-heads
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Expense head ID"
// @Param       request body ExpenseHeadRequest true "Expense head"
// @Success     200 {object} Response{data=models.ExpenseHead} "Expense head updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Expense head not found"
// @Router      /expense-heads/{id} [put]
func (h *ExpenseHeadHandler) UpdateExpenseHead(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	head, err := h.headService.UpdateExpenseHead(actor, c.Param("id"), req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_EXPENSE_HEAD", "expense_head", head.ID, c.ClientIP(),
		map[string]any{"name": head.Name, "description": head.Description})

	respond(c, http.StatusOK, "Expense head updated", head)
}

// SetExpenseHeadActive handles enabling or disabling an expense head.
// @Summary     Enable or disable an expense head
// @Description Disabled heads cannot be used for new expenses; existing expenses keep them.
// @Tags        expense-heads
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Expense head ID"
// @Param       request body SetActiveRequest true "Active flag"
// @Success     200 {object} Response{data=models.ExpenseHead} "Expense head updated"
// @Failure     404 {object} ErrorResponse "Expense head not found"
// @Router      /expense-heads/{id}/active [post]
func (h *ExpenseHeadHandler) SetExpenseHeadActive(c *gin.Context) {
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

	head, err := h.headService.SetExpenseHeadActive(actor, c.Param("id"), *req.Active)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "SET_EXPENSE_HEAD_ACTIVE", "expense_head", head.ID, c.ClientIP(),
		map[string]any{"active": head.IsActive})

	message := "Expense head disabled"
	if head.IsActive {
		message = "Expense head enabled"
	}
	respond(c, http.StatusOK, message, head)
}
