package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/handlers"
	"github.com/lunarcms/lunar/internal/middleware"
	"github.com/lunarcms/lunar/internal/rbac"
)

// registerFormRoutes mounts the public submission endpoints on the
// engine and the review surface behind the authenticated group.
func registerFormRoutes(engine *gin.Engine, api *gin.RouterGroup, handler *handlers.FormHandler, checker *rbac.Checker) {
	public := engine.Group("/api/forms")
	{
		public.POST("/design-consultant", handler.SubmitDesignConsultant)
		public.POST("/inquiry", handler.SubmitInquiry)
		public.POST("/contact", handler.SubmitContact)
	}

	forms := api.Group("/forms")
	{
		forms.GET("", middleware.RequireAccess(checker, "form", "view"), handler.List)
		forms.GET("/stats", middleware.RequireAccess(checker, "form", "view"), handler.Stats)
		forms.GET("/:id", middleware.RequireAccess(checker, "form", "view"), handler.Get)
		forms.PUT("/:id/status", middleware.RequireAccess(checker, "form", "update"), handler.UpdateStatus)
		forms.DELETE("/:id", middleware.RequireAccess(checker, "form", "delete"), handler.Delete)
	}
}
