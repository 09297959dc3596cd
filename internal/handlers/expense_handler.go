package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/services"
)

// ExpenseHandler handles expense entries.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// ExpenseRequest represents the request payload for creating or editing an expense.
type ExpenseRequest struct {
	EntryRequest
	ExpenseHeadID string `json:"expense_head_id" binding:"required,uuid"`
	Description   string `json:"description" binding:"max=500"`
}

func (r ExpenseRequest) input() (services.ExpenseInput, error) {
	entry, err := r.entry()
	if err != nil {
		return services.ExpenseInput{}, err
	}
	return services.ExpenseInput{EntryInput: entry, ExpenseHeadID: r.ExpenseHeadID, Description: r.Description}, nil
}

// AddExpense handles recording an expense.
// @Summary     Record an expense
// @Description Record cash paid out of the drawer against an active expense head
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense"
// @Success     201 {object} Response{data=models.Expense} "Expense recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or disabled head"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     409 {object} ErrorResponse "Shift closed or no shift open"
// @Router      /expenses [post]
func (h *ExpenseHandler) AddExpense(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.AddExpense(actor, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"shift_id": expense.ShiftID, "expense_head_id": expense.ExpenseHeadID}))

	respond(c, http.StatusCreated, "Expense recorded", expense)
}

// ListExpenses handles listing expenses.
// @Summary     List expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       shift_id        query string false "Shift ID"
// @Param       expense_head_id query string false "Expense head ID"
// @Param       from            query string false "Start date (YYYY-MM-DD)"
// @Param       to              query string false "End date (YYYY-MM-DD)"
// @Param       limit           query int    false "Maximum rows"
// @Success     200 {object} Response{data=[]models.Expense} "Expenses, newest first"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
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
	filter.ExpenseHeadID = c.Query("expense_head_id")

	expenses, err := h.expenseService.ListExpenses(actor, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", expenses)
}

// UpdateExpense handles editing an expense.
// @Summary     Edit an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense"
// @Success     200 {object} Response{data=models.Expense} "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"expense_head_id": expense.ExpenseHeadID}))

	respond(c, http.StatusOK, "Expense updated", expense)
}

// DeleteExpense handles deleting an expense.
// @Summary     Delete an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} Response "Expense deleted"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.expenseService.DeleteExpense(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "DELETE_EXPENSE", "expense", id, c.ClientIP(), nil)

	respond(c, http.StatusOK, "Expense deleted", nil)
}
