package middleware

import (
	"context"

	"github.com/billforge/billforge/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware tags every request with an id, propagated through the
// request context and echoed back in the response headers.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
