package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/lifecycle"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// SelfRole is the RBAC pseudo-role matching requests whose :id path
// parameter equals the caller's own user id.
const SelfRole = "SELF"

// RBAC allows a request through when the caller's role is in the allowed
// set, or when SelfRole is listed and the caller targets themselves.
func RBAC(allowed ...string) gin.HandlerFunc {
	roles := make(map[models.UserRole]struct{}, len(allowed))
	allowSelf := false
	for _, a := range allowed {
		if a == SelfRole {
			allowSelf = true
			continue
		}
		roles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		v, ok := c.Get(ContextUserKey)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := v.(*models.JWTClaims)

		if _, ok := roles[claims.Role]; ok {
			c.Next()
			return
		}
		if allowSelf && c.Param("id") != "" && c.Param("id") == claims.UserID {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles gates a route by an explicit role list.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// RequirePolicy gates a route by the lifecycle permission matrix, so route
// wiring and the policy table cannot drift apart.
func RequirePolicy(policy lifecycle.Policy, entity lifecycle.Entity, op lifecycle.Op) gin.HandlerFunc {
	return RequireRoles(policy.Roles(entity, op)...)
}
