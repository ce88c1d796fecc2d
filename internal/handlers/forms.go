package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/services"
	"github.com/lunarcms/lunar/pkg/response"
)

// FormHandler exposes the public submission endpoints and the admin
// workflow around them.
type FormHandler struct {
	forms *services.FormService
}

func NewFormHandler(forms *services.FormService) *FormHandler {
	return &FormHandler{forms: forms}
}

// POST /api/forms/design-consultant
func (h *FormHandler) SubmitDesignConsultant(c *gin.Context) {
	var req services.DesignConsultantInput
	if !bindAndValidate(c, &req) {
		return
	}

	submission, err := h.forms.SubmitDesignConsultant(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Design consultant request submitted successfully", submission)
}

// POST /api/forms/inquiry
func (h *FormHandler) SubmitInquiry(c *gin.Context) {
	var req services.InquiryInput
	if !bindAndValidate(c, &req) {
		return
	}

	submission, err := h.forms.SubmitInquiry(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Inquiry submitted successfully", submission)
}

// POST /api/forms/contact
func (h *FormHandler) SubmitContact(c *gin.Context) {
	var req services.ContactInput
	if !bindAndValidate(c, &req) {
		return
	}

	submission, err := h.forms.SubmitContact(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Contact form submitted successfully", submission)
}

// GET /api/forms
func (h *FormHandler) List(c *gin.Context) {
	opts := services.FormListOptions{
		ListOptions: listOptions(c),
		FormType:    c.Query("form_type"),
		Status:      c.Query("status"),
	}

	submissions, total, err := h.forms.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithPagination(c, submissions, paginationFor(opts.ListOptions, total))
}

// GET /api/forms/stats
func (h *FormHandler) Stats(c *gin.Context) {
	stats, err := h.forms.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// GET /api/forms/:id
func (h *FormHandler) Get(c *gin.Context) {
	submission, err := h.forms.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, submission)
}

// PUT /api/forms/:id/status
func (h *FormHandler) UpdateStatus(c *gin.Context) {
	var req services.UpdateSubmissionInput
	if !bindAndValidate(c, &req) {
		return
	}

	submission, err := h.forms.UpdateStatus(requestContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Form submission updated successfully", submission)
}

// DELETE /api/forms/:id
func (h *FormHandler) Delete(c *gin.Context) {
	if err := h.forms.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Form submission deleted successfully", nil)
}
