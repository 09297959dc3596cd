package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/middleware"
	"pharmaledger/internal/services"
)

const dateLayout = "2006-01-02"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

// respond writes a success envelope.
func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// respondWithError writes the failure envelope. AppErrors keep their status,
// code and message; anything else is logged and reported as an internal error.
func respondWithError(c *gin.Context, err error) {
	appErr := middleware.AsAppError(c, err)
	c.JSON(appErr.StatusCode, middleware.ErrorBody(appErr))
}

// invalid turns a binding failure into a validation error.
func invalid(err error) error {
	return apperrors.WithMessage(apperrors.ErrValidation, err.Error())
}

// getActor extracts the authenticated actor from the Gin context.
// Returns ErrUnauthorized if not present.
func getActor(c *gin.Context) (access.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return access.Actor{}, apperrors.ErrUnauthorized
	}
	return actor, nil
}

// parseDate parses an optional YYYY-MM-DD value. Empty input yields the zero time.
func parseDate(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.Validation("%s must be a date in YYYY-MM-DD format", field)
	}
	return d, nil
}

// parseDateQuery reads an optional date query parameter.
func parseDateQuery(c *gin.Context, param string) (*time.Time, error) {
	d, err := parseDate(c.Query(param), param)
	if err != nil || d.IsZero() {
		return nil, err
	}
	return &d, nil
}

// parseRange reads the from/to query parameters as an inclusive date range.
func parseRange(c *gin.Context) (services.DateRange, error) {
	from, err := parseDate(c.Query("from"), "from")
	if err != nil {
		return services.DateRange{}, err
	}
	to, err := parseDate(c.Query("to"), "to")
	if err != nil {
		return services.DateRange{}, err
	}
	return services.DateRange{From: from, To: to}, nil
}

// parseTransactionFilter reads the query parameters shared by transaction listings.
func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var f services.TransactionFilter
	var err error
	if f.From, err = parseDateQuery(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = parseDateQuery(c, "to"); err != nil {
		return f, err
	}
	f.ShiftID = c.Query("shift_id")
	if v := c.Query("limit"); v != "" {
		f.Limit, err = strconv.Atoi(v)
		if err != nil || f.Limit < 1 {
			return f, apperrors.Validation("limit must be a positive integer")
		}
	}
	return f, nil
}

// parseBoolQuery reads an optional boolean query parameter.
func parseBoolQuery(c *gin.Context, param string) (bool, error) {
	v := c.Query(param)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.Validation("%s must be 'true' or 'false'", param)
	}
	return b, nil
}

// wantsCSV reports whether the caller asked for a CSV export.
func wantsCSV(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), "csv")
}
