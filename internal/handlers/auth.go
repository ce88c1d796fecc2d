package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/services"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
	"github.com/lunarcms/lunar/pkg/response"
)

// AuthHandler manages login, registration and password flows.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, user, err := h.auth.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OKWithMessage(c, "Your account is verified successfully", gin.H{
		"token": token,
		"user":  user,
	})
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.Register(requestContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Your account was created successfully", user)
}

// POST /api/auth/staff-register
//
// Admin-only; the new account reports to the calling admin.
func (h *AuthHandler) RegisterStaff(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req services.RegisterInput
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.RegisterStaff(requestContext(c), identity.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Your account was created successfully", user)
}

// POST /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req services.ChangePasswordInput
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(requestContext(c), identity.Role, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OKWithMessage(c, "Password changed successfully", nil)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.auth.Me(requestContext(c), identity.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
