package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/courselane/courselane/internal/types"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware attaches a request id to the context and echoes
// it back in the response header. An id supplied by the caller is kept
// so traces can span services.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
		}

		ctx := types.SetRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}
