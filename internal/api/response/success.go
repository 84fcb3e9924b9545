package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kgcrom/cluefin-sub000/internal/api/middleware"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// Meta represents metadata in response
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Count     int       `json:"count,omitempty"`
}

func send(c *gin.Context, status int, data any, meta Meta) {
	meta.RequestID = middleware.GetRequestID(c)
	meta.Timestamp = time.Now()
	c.JSON(status, SuccessResponse{Data: data, Meta: meta})
}

// Success sends a 200 with data
func Success(c *gin.Context, data any) {
	send(c, http.StatusOK, data, Meta{})
}

// SuccessList sends a 200 with list data and its length
func SuccessList(c *gin.Context, data any, count int) {
	send(c, http.StatusOK, data, Meta{Count: count})
}

// Accepted sends a 202 for work that continues in the background.
func Accepted(c *gin.Context, data any, message string) {
	send(c, http.StatusAccepted, data, Meta{Message: message})
}
