package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/export"
	"pharmaledger/internal/models"
	"pharmaledger/internal/services"
)

// ReportHandler handles read-only reports. Range reports answer with JSON, or
// with a CSV download when format=csv.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// DailySummary returns the dashboard figures for one date.
// @Summary     Daily summary
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       date query string false "Date (YYYY-MM-DD), default today"
// @Success     200 {object} Response{data=services.DailySummary} "Summary"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /reports/daily [get]
func (h *ReportHandler) DailySummary(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	date, err := parseDate(c.Query("date"), "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if date.IsZero() {
		date = models.Today()
	}

	summary, err := h.reportService.DailySummary(actor, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "", summary)
}

// SalesReport lists sales in a date range.
// @Summary     Sales report
// @Tags        reports
// @Produce     json
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Param       format query string false "csv for a download"
// @Success     200 {object} Response{data=services.Report} "Report"
// @Router      /reports/sales [get]
func (h *ReportHandler) SalesReport(c *gin.Context) {
	h.rangeReport(c, h.reportService.SalesReport)
}

// ExpensesReport lists expenses with their heads in a date range.
// @Summary     Expenses report
// @Tags        reports
// @Produce     json
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Param       format query string false "csv for a download"
// @Success     200 {object} Response{data=services.Report} "Report"
// @Router      /reports/expenses [get]
func (h *ReportHandler) ExpensesReport(c *gin.Context) {
	h.rangeReport(c, h.reportService.ExpensesReport)
}

// ShiftReport lists shifts opened in a date range.
// @Summary     Shift report
// @Tags        reports
// @Produce     json
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Param       format query string false "csv for a download"
// @Success     200 {object} Response{data=services.Report} "Report"
// @Router      /reports/shifts [get]
func (h *ReportHandler) ShiftReport(c *gin.Context) {
	h.rangeReport(c, h.reportService.ShiftReport)
}

// VendorLedgerReport renders a vendor ledger.
// @Summary     Vendor ledger report
// @Tags        reports
// @Produce     json
// @Produce     text/csv
// @Security    BearerAuth
// @Param       id     path  string true  "Vendor ID"
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Param       format query string false "csv for a download"
// @Success     200 {object} Response{data=services.Report} "Report"
// @Failure     404 {object} ErrorResponse "Vendor not found"
// @Router      /reports/vendors/{id}/ledger [get]
func (h *ReportHandler) VendorLedgerReport(c *gin.Context) {
	vendorID := c.Param("id")
	h.rangeReport(c, func(actor access.Actor, r services.DateRange) (*services.Report, error) {
		return h.reportService.VendorLedgerReport(actor, vendorID, r)
	})
}

// PersonalLedgerReport renders the personal ledger.
// @Summary     Personal ledger report
// @Tags        reports
// @Produce     json
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Param       type   query string false "withdrawal or investment"
// @Param       format query string false "csv for a download"
// @Success     200 {object} Response{data=services.Report} "Report"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /reports/personal [get]
func (h *ReportHandler) PersonalLedgerReport(c *gin.Context) {
	personalType := models.PersonalType(c.Query("type"))
	if personalType != "" && !personalType.Valid() {
		respondWithError(c, apperrors.Validation("type must be 'withdrawal' or 'investment'"))
		return
	}
	h.rangeReport(c, func(actor access.Actor, r services.DateRange) (*services.Report, error) {
		return h.reportService.PersonalLedgerReport(actor, r, personalType)
	})
}

// ProfitAndLoss renders the P&L statement.
// @Summary     Profit and loss
// @Description COGS defaults to purchases less returns in the range unless given
// @Tags        reports
// @Produce     json
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from   query string false "Start date (YYYY-MM-DD)"
// @Param       to     query string false "End date (YYYY-MM-DD)"
// @Param       cogs   query string false "Cost of goods sold override"
// @Param       format query string false "csv for a download"
// @Success     200 {object} Response{data=services.ProfitAndLoss} "Statement"
// @Failure     403 {object} ErrorResponse "Permission denied"
// @Router      /reports/profit-loss [get]
func (h *ReportHandler) ProfitAndLoss(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := parseRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var cogs *decimal.Decimal
	if v := c.Query("cogs"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			respondWithError(c, apperrors.Validation("cogs must be a number"))
			return
		}
		cogs = &d
	}

	pl, err := h.reportService.ProfitAndLoss(actor, r, cogs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if wantsCSV(c) {
		writeCSV(c, pl.Table(), pl.From, pl.To)
		return
	}
	respond(c, http.StatusOK, "", pl)
}

func (h *ReportHandler) rangeReport(c *gin.Context, build func(actor access.Actor, r services.DateRange) (*services.Report, error)) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := parseRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := build(actor, r)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if wantsCSV(c) {
		writeCSV(c, report.Table, report.From, report.To)
		return
	}
	respond(c, http.StatusOK, "", report)
}

// writeCSV streams a table as a CSV attachment named after its title and range.
func writeCSV(c *gin.Context, t *export.Table, from, to time.Time) {
	words := strings.FieldsFunc(strings.ToLower(t.Title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	name := strings.Join(words, "-")
	filename := fmt.Sprintf("%s_%s_%s.csv", name, from.Format(dateLayout), to.Format(dateLayout))

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, t); err != nil {
		_ = c.Error(err)
	}
}
