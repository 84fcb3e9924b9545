package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kgcrom/cluefin-sub000/internal/api/middleware"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
)

// Error sends an error response. 5xx responses are logged at error level,
// the rest at warn.
func Error(c *gin.Context, statusCode int, code, message, details string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
		},
	}

	event := log.Warn()
	if statusCode >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Str("request_id", resp.Error.RequestID).
		Str("error_code", code).
		Str("message", message).
		Str("details", details).
		Int("status", statusCode).
		Msg("API error response")

	c.AbortWithStatusJSON(statusCode, resp)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeInvalidParameter, message, "")
}

// ValidationError sends a 400 for a request that parsed but failed domain
// validation.
func ValidationError(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, ErrCodeValidation, "Request validation failed", err.Error())
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ErrCodeNotFound, message, "")
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, ErrCodeConflict, message, "")
}

// InternalError sends a 500 Internal Server Error
func InternalError(c *gin.Context, err error) {
	Error(c, http.StatusInternalServerError, ErrCodeInternalServer, "An unexpected error occurred", errString(err))
}

// DatabaseError sends a database error response
func DatabaseError(c *gin.Context, err error) {
	Error(c, http.StatusInternalServerError, ErrCodeDatabaseError, "Database operation failed", errString(err))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
