package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/store"
)

// Identity stamps the request context with the calling surface
// (X-App-Name, sent by the editor UI) and the client IP, so audit rows
// can attribute who edited what from where.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), store.ContextKeyClientIP, c.ClientIP())
		if appName := c.GetHeader("X-App-Name"); appName != "" {
			ctx = context.WithValue(ctx, store.ContextKeyAppName, appName)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
