package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/models"
	"github.com/lunarcms/lunar/internal/rbac"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
	"github.com/lunarcms/lunar/pkg/metrics"
	"github.com/lunarcms/lunar/pkg/response"
)

// RequireAccess guards a route with the authorization decision
// procedure for a fixed module/action pair. Unlike the query endpoint,
// a denial here is a real 403: the caller asked for the resource, not
// for the decision.
func RequireAccess(checker *rbac.Checker, module, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		decision, err := checker.Check(c.Request.Context(), identity, module, action)
		if err != nil && !apperrors.IsDomain(err) {
			metrics.PermissionChecks.WithLabelValues("guard", "error").Inc()
			response.ServerError(c)
			c.Abort()
			return
		}
		if !decision.Allowed {
			metrics.PermissionChecks.WithLabelValues("guard", "denied").Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, response.Envelope{
				Status:  false,
				Message: "You are not authorized to access this resource",
			})
			return
		}

		metrics.PermissionChecks.WithLabelValues("guard", "allowed").Inc()
		c.Next()
	}
}

// RequireAdmin restricts a route to identities carrying the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if identity.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Envelope{
				Status:  false,
				Message: "You are not authorized to access this resource",
			})
			return
		}
		c.Next()
	}
}
