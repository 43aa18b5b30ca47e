// file: middlewares/auth.go
package middlewares

import (
	"context"
	"strings"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
	"github.com/gin-gonic/gin"
)

const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
	CtxClaims   = "claims"
)

// Authenticator validates a bearer token and returns its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.Claims, error)
}

// JWTAuthMiddleware 验证用户是否登录
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			utils.Error(c, apperrors.CodeAuthMissing, "Authorization header is missing")
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			utils.Error(c, apperrors.CodeAuthFormat, "Authorization header must be: Bearer <token>")
			c.Abort()
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			utils.Fail(c, err)
			c.Abort()
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserRole, claims.Role)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// RoleAuthMiddleware 验证用户角色权限
func RoleAuthMiddleware(requiredRoles ...models.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleAny, exists := c.Get(CtxUserRole)
		if !exists {
			utils.Error(c, apperrors.CodeInternal, "user role missing from context")
			c.Abort()
			return
		}

		role := roleAny.(models.StaffRole)

		// PRESIDENT 拥有所有权限
		hasPermission := role == models.RolePresident
		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				hasPermission = true
				break
			}
		}

		if !hasPermission {
			utils.Error(c, apperrors.CodeForbidden, "Insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated staff id, or 0.
func CurrentUserID(c *gin.Context) uint32 {
	id, _ := c.Get(CtxUserID)
	v, _ := id.(uint32)
	return v
}

// CurrentClaims returns the claims set by JWTAuthMiddleware.
func CurrentClaims(c *gin.Context) *utils.Claims {
	v, _ := c.Get(CtxClaims)
	claims, _ := v.(*utils.Claims)
	return claims
}
