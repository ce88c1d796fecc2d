package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/auth"
	"github.com/lunarcms/lunar/internal/rbac"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
	"github.com/lunarcms/lunar/pkg/response"
)

// Context keys populated by Auth.
const (
	CtxClaimsKey   = "authClaims"
	CtxIdentityKey = "authIdentity"
)

// Auth enforces JWT bearer authentication using the supplied JWT
// service. A verified identity is attached to the request context for
// handlers and guards downstream.
func Auth(jwt *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxIdentityKey, rbac.Identity{ID: claims.UserID, Role: claims.Role})

		c.Next()
	}
}

// IdentityFrom extracts the verified identity attached by Auth.
func IdentityFrom(c *gin.Context) (rbac.Identity, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return rbac.Identity{}, false
	}
	identity, ok := v.(rbac.Identity)
	return identity, ok
}

// ClaimsFrom extracts the verified token claims attached by Auth.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
