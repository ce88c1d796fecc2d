package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/handlers"
	"github.com/lunarcms/lunar/internal/middleware"
	"github.com/lunarcms/lunar/internal/rbac"
)

func registerCategoryRoutes(engine *gin.Engine, api *gin.RouterGroup, handler *handlers.CategoryHandler, checker *rbac.Checker) {
	public := engine.Group("/api/categories")
	{
		public.GET("", handler.List)
		public.GET("/tree", handler.Tree)
		public.GET("/:id", handler.Get)
		public.GET("/slug/:slug", handler.GetBySlug)
	}

	categories := api.Group("/categories")
	{
		categories.POST("", middleware.RequireAccess(checker, "category", "create"), handler.Create)
		categories.PUT("/:id", middleware.RequireAccess(checker, "category", "update"), handler.Update)
		categories.DELETE("/:id", middleware.RequireAccess(checker, "category", "delete"), handler.Delete)
	}
}
