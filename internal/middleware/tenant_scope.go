package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/auth"
	"backend/internal/scope"
	"backend/internal/tenant"
)

// TenantScopeMiddleware resolves the caller's tenant scope once per request
// and attaches it to the request context. Must run after AuthMiddleware.
func TenantScopeMiddleware(resolver *tenant.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.GetIdentity(c)
		if !ok {
			c.Next()
			return
		}
		s := scope.ScopeForIdentity(c.Request.Context(), resolver, id, logger)
		c.Request = c.Request.WithContext(tenant.WithScope(c.Request.Context(), s))
		c.Next()
	}
}
