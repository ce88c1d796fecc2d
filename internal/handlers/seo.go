package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/services"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
	"github.com/lunarcms/lunar/pkg/response"
)

// SEOHandler exposes SEO metadata management.
type SEOHandler struct {
	seo *services.SEOService
}

func NewSEOHandler(seo *services.SEOService) *SEOHandler {
	return &SEOHandler{seo: seo}
}

// POST /api/seo
func (h *SEOHandler) Create(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req services.CreateSEOInput
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.seo.Create(requestContext(c), identity.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "SEO entry created successfully", entry)
}

// GET /api/seo
func (h *SEOHandler) List(c *gin.Context) {
	entries, err := h.seo.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// GET /api/seo/slug/:slug
func (h *SEOHandler) GetBySlug(c *gin.Context) {
	entry, err := h.seo.GetBySlug(requestContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// GET /api/seo/category/:name
func (h *SEOHandler) GetByCategoryName(c *gin.Context) {
	entry, err := h.seo.GetByCategoryName(requestContext(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// PUT /api/seo/:slug
func (h *SEOHandler) Update(c *gin.Context) {
	var req services.UpdateSEOInput
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.seo.Update(requestContext(c), c.Param("slug"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "SEO entry updated successfully", entry)
}

// DELETE /api/seo/:slug
func (h *SEOHandler) Delete(c *gin.Context) {
	if err := h.seo.Delete(requestContext(c), c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "SEO entry deleted successfully", nil)
}
