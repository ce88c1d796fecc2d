package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/handlers"
	"github.com/lunarcms/lunar/internal/middleware"
)

func registerAuthRoutes(engine *gin.Engine, api *gin.RouterGroup, handler *handlers.AuthHandler) {
	auth := engine.Group("/api/auth")
	{
		auth.POST("/login", handler.Login)
		auth.POST("/register", handler.Register)
	}

	api.GET("/auth/me", handler.Me)
	api.POST("/auth/password", handler.ChangePassword)
	api.POST("/auth/staff-register", middleware.RequireAdmin(), handler.RegisterStaff)
}
