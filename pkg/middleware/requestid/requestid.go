package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header is the request/response header carrying the request id.
	Header = "X-Request-ID"

	contextKey = "request_id"
)

// Middleware tags every request with an id, honouring one supplied by the
// caller so ids correlate across service hops.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// Value returns the request id for the current request, or "" before the
// middleware has run.
func Value(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}
