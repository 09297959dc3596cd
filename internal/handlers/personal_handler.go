package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/models"
	"pharmaledger/internal/services"
)

// PersonalHandler handles the owner's personal ledger.
type PersonalHandler struct {
	personalService services.PersonalServicer
	auditService    services.AuditServicer
}

// NewPersonalHandler creates a new PersonalHandler.
func NewPersonalHandler(personalService services.PersonalServicer, auditService services.AuditServicer) *PersonalHandler {
	return &PersonalHandler{personalService: personalService, auditService: auditService}
}

// PersonalRequest represents an owner withdrawal or investment.
type PersonalRequest struct {
	EntryRequest
	Type        models.PersonalType `json:"type" binding:"required,personal_type"`
	Description string              `json:"description" binding:"max=500"`
}

func (r PersonalRequest) input() (services.PersonalInput, error) {
	entry, err := r.entry()
	if err != nil {
		return services.PersonalInput{}, err
	}
	return services.PersonalInput{EntryInput: entry, Type: r.Type, Description: r.Description}, nil
}

// AddPersonal handles recording a personal transaction.
// @Summary     Record a withdrawal or investment
// @Tags        personal
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PersonalRequest true "Personal transaction"
// @Success     201 {object} Response{data=models.PersonalTransaction} "Recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     409 {object} ErrorResponse "Shift closed or no shift open"
// @Router      /personal [post]
func (h *PersonalHandler) AddPersonal(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PersonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.personalService.AddPersonal(actor, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CREATE_PERSONAL", "personal_transaction", tx.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"type": tx.Type, "shift_id": tx.ShiftID}))

	message := "Investment recorded"
	if tx.Type == models.PersonalWithdrawal {
		message = "Withdrawal recorded"
	}
	respond(c, http.StatusCreated, message, tx)
}

// ListPersonal handles listing personal transactions.
// @Summary     List personal transactions
// @Tags        personal
// @Produce     json
// @Security    BearerAuth
// @Param       type  query string false "withdrawal or investment"
// @Param       from  query string false "Start date (YYYY-MM-DD)"
// @Param       to    query string false "End date (YYYY-MM-DD)"
// @Param       limit query int    false "Maximum rows"
// @Success     200 {object} Response{data=[]models.PersonalTransaction} "Transactions, newest first"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /personal [get]
func (h *PersonalHandler) ListPersonal(c *gin.Context) {
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
	if v := c.Query("type"); v != "" {
		filter.PersonalType = models.PersonalType(v)
		if !filter.PersonalType.Valid() {
			respondWithError(c, apperrors.Validation("type must be 'withdrawal' or 'investment'"))
			return
		}
	}

	txs, err := h.personalService.ListPersonal(actor, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", txs)
}

// GetBalance returns the all-time personal balance.
// @Summary     Personal balance
// @Description All investments less all withdrawals
// @Tags        personal
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response "Balance"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /personal/balance [get]
func (h *PersonalHandler) GetBalance(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.personalService.Balance(actor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", gin.H{"balance": balance})
}

// UpdatePersonal handles editing a personal transaction.
// @Summary     Edit a personal transaction
// @Tags        personal
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Transaction ID"
// @Param       request body PersonalRequest true "Personal transaction"
// @Success     200 {object} Response{data=models.PersonalTransaction} "Updated"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /personal/{id} [put]
func (h *PersonalHandler) UpdatePersonal(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PersonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalid(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.personalService.UpdatePersonal(actor, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_PERSONAL", "personal_transaction", tx.ID, c.ClientIP(),
		entryChanges(in.EntryInput, map[string]any{"type": tx.Type}))

	respond(c, http.StatusOK, "Transaction updated", tx)
}

// DeletePersonal handles deleting a personal transaction.
// @Summary     Delete a personal transaction
// @Tags        personal
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} Response "Deleted"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /personal/{id} [delete]
func (h *PersonalHandler) DeletePersonal(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.personalService.DeletePersonal(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "DELETE_PERSONAL", "personal_transaction", id, c.ClientIP(), nil)

	respond(c, http.StatusOK, "Transaction deleted", nil)
}
