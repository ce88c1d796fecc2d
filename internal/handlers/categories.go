package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/services"
	"github.com/lunarcms/lunar/pkg/response"
)

// CategoryHandler exposes category management and the public tree.
type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// POST /api/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req services.CreateCategoryInput
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Create(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Category created successfully", category)
}

// GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	opts := services.CategoryListOptions{
		ListOptions: listOptions(c),
		Filter:      c.Query("filter"),
		RootOnly:    c.Query("parent_null") == "true",
		ParentSlug:  c.Query("parent_slug"),
	}

	categories, total, err := h.categories.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithPagination(c, categories, paginationFor(opts.ListOptions, total))
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categories.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, category)
}

// GET /api/categories/slug/:slug
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	category, err := h.categories.GetBySlug(requestContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, category)
}

// GET /api/categories/tree
func (h *CategoryHandler) Tree(c *gin.Context) {
	tree, err := h.categories.Tree(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tree)
}

// PUT /api/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	var req services.UpdateCategoryInput
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Update(requestContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Category updated successfully", category)
}

// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categories.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Category deleted successfully", nil)
}
