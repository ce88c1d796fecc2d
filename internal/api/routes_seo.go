package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/handlers"
	"github.com/lunarcms/lunar/internal/middleware"
	"github.com/lunarcms/lunar/internal/rbac"
)

func registerSEORoutes(engine *gin.Engine, api *gin.RouterGroup, handler *handlers.SEOHandler, checker *rbac.Checker) {
	public := engine.Group("/api/seo")
	{
		public.GET("", handler.List)
		public.GET("/slug/:slug", handler.GetBySlug)
		public.GET("/category/:name", handler.GetByCategoryName)
	}

	seo := api.Group("/seo")
	{
		seo.POST("", middleware.RequireAccess(checker, "seo", "create"), handler.Create)
		seo.PUT("/:slug", middleware.RequireAccess(checker, "seo", "update"), handler.Update)
		seo.DELETE("/:slug", middleware.RequireAccess(checker, "seo", "delete"), handler.Delete)
	}
}
