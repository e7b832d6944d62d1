package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RoleMiddleware struct{}

func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

func (r *RoleMiddleware) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "User role not found",
			})
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error_code": "forbidden",
			"message":    "Insufficient permissions",
			"details": gin.H{
				"required_roles": allowedRoles,
				"user_role":      role,
			},
		})
		c.Abort()
	})
}

func (r *RoleMiddleware) AdminGuard() gin.HandlerFunc {
	return r.RequireRole("admin")
}

func (r *RoleMiddleware) ClientGuard() gin.HandlerFunc {
	return r.RequireRole("client", "admin")
}

// RequireClientAccess stops a client-scoped token from touching another
// tenant's profiles, documents, or generations. Admin tokens pass through.
func (r *RoleMiddleware) RequireClientAccess() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role := GetRole(c)
		if role == "admin" {
			c.Next()
			return
		}

		userClientID := GetClientID(c)
		if role == "client" && userClientID == "" {
			c.JSON(http.StatusForbidden, gin.H{
				"error_code": "forbidden",
				"message":    "Client ID required for this operation",
			})
			c.Abort()
			return
		}

		requestedClientID := c.Param("client_id")
		if requestedClientID == "" {
			requestedClientID = c.Param("id")
		}

		if requestedClientID != "" && role == "client" && requestedClientID != userClientID {
			c.JSON(http.StatusForbidden, gin.H{
				"error_code": "forbidden",
				"message":    "Access denied to this client",
			})
			c.Abort()
			return
		}

		c.Next()
	})
}

func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == "admin"
}

// CanAccessClient reports whether the authenticated subject may act on the
// given tenant.
func CanAccessClient(c *gin.Context, targetClientID string) bool {
	if IsAdmin(c) {
		return true
	}
	return GetClientID(c) == targetClientID
}
