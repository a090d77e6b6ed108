package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostelbooking/internal/pkg/apperror"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    string `json:"code" example:"INVALID_AMOUNT"`
	Message string `json:"message" example:"amount must be greater than 0, got 0"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is what every failed request returns.
type ErrorEnvelope struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorBody `json:"error"`
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, ErrorEnvelope{Error: ErrorBody{Code: code, Message: message}})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, ErrorEnvelope{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// FromError writes err using the status that matches its kind. Internal
// errors are recorded on the context for the error logger and hidden from
// the client.
func FromError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	if kind == apperror.KindConcurrency {
		c.Header("Retry-After", "1")
	}
	Error(c, StatusFor(kind), apperror.CodeOf(err), err.Error())
}

func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindState:
		return http.StatusUnprocessableEntity
	case apperror.KindConcurrency:
		return http.StatusServiceUnavailable
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
