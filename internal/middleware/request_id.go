package middleware

import (
	"github.com/gin-gonic/gin"

	"hilo-gateway-backend/internal/models"
)

// RequestID tags every request for log correlation, honoring an id the
// caller already carries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = models.GenerateRequestID()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
