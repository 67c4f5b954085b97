package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"xdrive-logistics-api-server/internal/auth"
)

// Context keys set by Authenticate and read by handlers.
const (
	CtxUserID    = "user_id"
	CtxUserRole  = "user_role"
	CtxCompanyID = "user_company_id"
)

// Authenticate validates the bearer token and stores the caller's
// identity in the request context.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserRole, string(claims.Role))
		c.Set(CtxCompanyID, claims.CompanyID)

		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated
// caller holds one of the given roles.
func RequireRole(allowed ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get(CtxUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role not found in context"})
			return
		}

		role, ok := auth.ParseRole(roleValue.(string))
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role has an invalid value"})
			return
		}

		for _, a := range allowed {
			if a == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}
