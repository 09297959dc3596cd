package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/pagination"
	"pharmaledger/internal/services"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAuditLogs lists audit entries, newest first.
// @Summary     List audit logs
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       resource_type query string false "Filter by resource type, e.g. sale or shift"
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} Response{data=pagination.PageResponse[models.AuditLog]} "Audit entries"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalid(err))
		return
	}

	result, err := h.auditService.List(actor, c.Query("resource_type"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", result)
}
