package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/services"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
	"github.com/lunarcms/lunar/pkg/response"
)

// BlogHandler exposes blog authoring and retrieval.
type BlogHandler struct {
	blogs *services.BlogService
}

func NewBlogHandler(blogs *services.BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// POST /api/blogs
func (h *BlogHandler) Create(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req services.CreateBlogInput
	if !bindAndValidate(c, &req) {
		return
	}

	blog, err := h.blogs.Create(requestContext(c), identity.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Blog created successfully", blog)
}

// GET /api/blogs
func (h *BlogHandler) List(c *gin.Context) {
	opts := services.BlogListOptions{
		ListOptions: listOptions(c),
		Filter:      c.Query("filter"),
	}

	blogs, total, err := h.blogs.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithPagination(c, blogs, paginationFor(opts.ListOptions, total))
}

// GET /api/blogs/:id
func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.blogs.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, blog)
}

// GET /api/blogs/slug/:slug
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	blog, err := h.blogs.GetBySlug(requestContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, blog)
}

// PUT /api/blogs/:id
func (h *BlogHandler) Update(c *gin.Context) {
	var req services.UpdateBlogInput
	if !bindAndValidate(c, &req) {
		return
	}

	blog, err := h.blogs.Update(requestContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Blog updated successfully", blog)
}

// DELETE /api/blogs/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.blogs.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Blog deleted successfully", nil)
}
