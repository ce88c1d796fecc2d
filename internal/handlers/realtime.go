package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/auth"
	"github.com/lunarcms/lunar/internal/rbac"
	"github.com/lunarcms/lunar/internal/realtime"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
	"github.com/lunarcms/lunar/pkg/response"
)

// RealtimeHandler upgrades authenticated clients onto the websocket hub.
type RealtimeHandler struct {
	hub *realtime.Hub
	jwt *auth.JWTService
}

func NewRealtimeHandler(hub *realtime.Hub, jwt *auth.JWTService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, jwt: jwt}
}

// GET /ws
//
// Credentials are verified once, at the handshake. Browser websocket
// clients cannot set headers, so the token is also accepted as a
// "token" query parameter. A rejected credential refuses the upgrade;
// an accepted one holds for the lifetime of the connection.
func (h *RealtimeHandler) Serve(c *gin.Context) {
	token := handshakeToken(c)
	if token == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, apperrors.ErrInvalidToken)
		return
	}

	identity := rbac.Identity{ID: claims.UserID, Role: claims.Role}
	h.hub.Serve(identity, c.Writer, c.Request)
}

func handshakeToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	authz := c.GetHeader("Authorization")
	if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}
