package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/tenant"
)

// IdentityContextKey is the gin context key holding the authenticated
// identity.
const IdentityContextKey = "identity"

// ExtractTokenFromBearer pulls the raw token out of an Authorization header.
// Returns an empty string when the header is not a bearer credential.
func ExtractTokenFromBearer(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware validates the bearer token and attaches the identity to both
// the gin context and the request context.
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		token := ExtractTokenFromBearer(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token format"})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token validation failed"})
			return
		}

		identity := tenant.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Roles:  claims.Roles,
		}

		c.Set(IdentityContextKey, identity)
		c.Request = c.Request.WithContext(tenant.WithIdentity(c.Request.Context(), identity))

		c.Next()
	}
}

// GetIdentity retrieves the identity attached by AuthMiddleware.
func GetIdentity(c *gin.Context) (tenant.Identity, bool) {
	v, ok := c.Get(IdentityContextKey)
	if !ok {
		return tenant.Identity{}, false
	}
	id, ok := v.(tenant.Identity)
	return id, ok
}
