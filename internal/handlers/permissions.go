package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/services"
	"github.com/lunarcms/lunar/pkg/response"
)

// PermissionHandler exposes the action side of the permission catalog.
type PermissionHandler struct {
	catalog *services.CatalogService
}

func NewPermissionHandler(catalog *services.CatalogService) *PermissionHandler {
	return &PermissionHandler{catalog: catalog}
}

type permissionRequest struct {
	Action   string `json:"action" validate:"required"`
	ModuleID string `json:"module_id" validate:"required"`
}

// POST /admin/permission
func (h *PermissionHandler) Create(c *gin.Context) {
	var req permissionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	permission, err := h.catalog.CreatePermission(requestContext(c), req.Action, req.ModuleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Permission created successfully", permission)
}

// GET /admin/permissions
func (h *PermissionHandler) List(c *gin.Context) {
	opts := listOptions(c)
	permissions, total, err := h.catalog.ListPermissions(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithPagination(c, permissions, paginationFor(opts, total))
}

// GET /admin/permission/:id
func (h *PermissionHandler) Get(c *gin.Context) {
	permission, err := h.catalog.GetPermission(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, permission)
}

// PUT /admin/permission/:id
func (h *PermissionHandler) Update(c *gin.Context) {
	var req permissionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	permission, err := h.catalog.UpdatePermission(requestContext(c), c.Param("id"), req.Action, req.ModuleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Permission updated successfully", permission)
}

// DELETE /admin/permission/:id
func (h *PermissionHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeletePermission(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Permission deleted successfully", nil)
}
