package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/catalogd/internal/shared/id"
)

// RequestIDHeader carries the request ID in and out
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID propagates a well-formed inbound X-Request-ID or generates one,
// stores it on the request context and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := id.RequestID(c.GetHeader(RequestIDHeader))
		if !id.IsValid(reqID.String()) {
			reqID = id.NewRequestID()
		}

		c.Set(requestIDKey, reqID.String())
		c.Request = c.Request.WithContext(id.WithRequestID(c.Request.Context(), reqID))
		c.Header(RequestIDHeader, reqID.String())
		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
