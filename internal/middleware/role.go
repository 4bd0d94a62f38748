package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/domain"
	"carrental/internal/pkg/response"
)

// RequireRole lets the request through when the token role is one of roles.
// It must run after JWTAuth.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Role not found in token")
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
