package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/services"
	"github.com/lunarcms/lunar/pkg/response"
)

// ModuleHandler exposes the module side of the permission catalog.
type ModuleHandler struct {
	catalog *services.CatalogService
}

func NewModuleHandler(catalog *services.CatalogService) *ModuleHandler {
	return &ModuleHandler{catalog: catalog}
}

type moduleRequest struct {
	Name string `json:"name" validate:"required"`
}

// POST /admin/module
func (h *ModuleHandler) Create(c *gin.Context) {
	var req moduleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	module, err := h.catalog.CreateModule(requestContext(c), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Module created successfully", module)
}

// GET /admin/modules
func (h *ModuleHandler) List(c *gin.Context) {
	opts := listOptions(c)
	modules, total, err := h.catalog.ListModules(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithPagination(c, modules, paginationFor(opts, total))
}

// GET /admin/module/:id
func (h *ModuleHandler) Get(c *gin.Context) {
	module, err := h.catalog.GetModule(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, module)
}

// PUT /admin/module/:id
func (h *ModuleHandler) Update(c *gin.Context) {
	var req moduleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	module, err := h.catalog.UpdateModule(requestContext(c), c.Param("id"), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Module updated successfully", module)
}

// DELETE /admin/module/:id
func (h *ModuleHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteModule(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Module deleted successfully", nil)
}
