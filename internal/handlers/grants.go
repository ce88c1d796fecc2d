package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/rbac"
	"github.com/lunarcms/lunar/internal/services"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
	"github.com/lunarcms/lunar/pkg/metrics"
	"github.com/lunarcms/lunar/pkg/response"
)

// GrantHandler exposes grant management and the HTTP side of the
// authorization decision procedure.
type GrantHandler struct {
	grants  *services.GrantService
	checker *rbac.Checker
}

func NewGrantHandler(grants *services.GrantService, checker *rbac.Checker) *GrantHandler {
	return &GrantHandler{grants: grants, checker: checker}
}

type grantRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	PermissionID string `json:"permission_id" validate:"required"`
}

// POST /admin/user-permission/assign
func (h *GrantHandler) Assign(c *gin.Context) {
	var req grantRequest
	if !bindAndValidate(c, &req) {
		return
	}

	grant, err := h.grants.Assign(requestContext(c), req.UserID, req.PermissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Permission assigned successfully", grant)
}

// POST /admin/user-permission/revoke
func (h *GrantHandler) Revoke(c *gin.Context) {
	var req grantRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.grants.Revoke(requestContext(c), req.UserID, req.PermissionID); err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Permission revoked successfully", nil)
}

// GET /admin/user-permission
func (h *GrantHandler) ListAll(c *gin.Context) {
	opts := listOptions(c)
	grants, total, err := h.grants.ListAll(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithPagination(c, grants, paginationFor(opts, total))
}

// GET /admin/user-permission/:user_id
func (h *GrantHandler) ListForUser(c *gin.Context) {
	grants, err := h.grants.ListForUser(requestContext(c), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grants)
}

// GET /admin/check-user-permission?moduleName=&action=
//
// The outcome is always an HTTP 200 envelope: a denial, a validation
// error and an unknown module/action all soft-fail with status=false.
// Only a missing or invalid bearer credential produces a non-200.
func (h *GrantHandler) Check(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	decision, err := h.checker.Check(
		requestContext(c),
		identity,
		c.Query("moduleName"),
		c.Query("action"),
	)
	switch {
	case err == nil:
		result := "denied"
		if decision.Allowed {
			result = "allowed"
		}
		metrics.PermissionChecks.WithLabelValues("http", result).Inc()
		response.Decision(c, decision.Allowed, decision.Reason)
	case apperrors.IsDomain(err):
		metrics.PermissionChecks.WithLabelValues("http", "denied").Inc()
		response.Decision(c, false, apperrors.FromError(err).Message)
	default:
		metrics.PermissionChecks.WithLabelValues("http", "error").Inc()
		response.ServerError(c)
	}
}
