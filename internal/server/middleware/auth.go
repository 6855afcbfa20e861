package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/store"
	"github.com/modelheap/registry-admin/pkg/api"
)

// Auth checks for a valid Bearer token in the Authorization header.
// Static keys from config are accepted as-is; anything else is hashed and
// looked up in the key store. The resolved actor is injected into the
// request context for audit logging.
func Auth(repo store.Repository, staticKeys []string) gin.HandlerFunc {
	staticMap := make(map[string]bool)
	for _, k := range staticKeys {
		if k != "" {
			staticMap[k] = true
		}
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Missing Authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid Authorization header format"})
			return
		}

		token := parts[1]

		if staticMap[token] {
			ctx := context.WithValue(c.Request.Context(), store.ContextKeyActor, "static")
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		}

		if repo == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid API Key"})
			return
		}

		hash := sha256.Sum256([]byte(token))
		hashedHex := hex.EncodeToString(hash[:])

		key, err := repo.APIKeys().GetByHash(c.Request.Context(), hashedHex)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid API Key"})
			return
		}

		// Inject key into context for downstream use (audit logging)
		ctx := context.WithValue(c.Request.Context(), store.ContextKeyAPIKey, key)
		ctx = context.WithValue(ctx, store.ContextKeyActor, key.ID)
		c.Request = c.Request.WithContext(ctx)

		// Update last used timestamp (async)
		go func() {
			_ = repo.APIKeys().Touch(context.Background(), key.ID)
		}()

		c.Next()
	}
}
