package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/logger"
)

// ErrorBody is the failure envelope: the message is meant to be shown to the
// user verbatim, the code is for clients that branch on it.
func ErrorBody(e *apperrors.AppError) gin.H {
	return gin.H{
		"success": false,
		"message": e.Message,
		"error": gin.H{
			"code":    e.Code,
			"message": e.Message,
		},
	}
}

// AsAppError converts any error into an *AppError. Unexpected errors are
// logged and collapse into the generic internal error so details never leak.
func AsAppError(c *gin.Context, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
				"request_id", c.GetString(requestIDKey),
			)
		}
		return appErr
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", c.GetString(requestIDKey),
	)
	return apperrors.ErrInternalServer
}

// AbortWithError writes the failure envelope for err and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	appErr := AsAppError(c, err)
	c.AbortWithStatusJSON(appErr.StatusCode, ErrorBody(appErr))
}

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into the failure envelope, unless a response was already written.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := AsAppError(c, c.Errors.Last().Err)
		c.JSON(appErr.StatusCode, ErrorBody(appErr))
	}
}
