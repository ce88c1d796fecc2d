package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/handlers"
	"github.com/lunarcms/lunar/internal/middleware"
	"github.com/lunarcms/lunar/internal/rbac"
)

// registerBlogRoutes mounts public reads on the engine and guarded
// mutations behind the authenticated group.
func registerBlogRoutes(engine *gin.Engine, api *gin.RouterGroup, handler *handlers.BlogHandler, checker *rbac.Checker) {
	public := engine.Group("/api/blogs")
	{
		public.GET("", handler.List)
		public.GET("/:id", handler.Get)
		public.GET("/slug/:slug", handler.GetBySlug)
	}

	blogs := api.Group("/blogs")
	{
		blogs.POST("", middleware.RequireAccess(checker, "blog", "create"), handler.Create)
		blogs.PUT("/:id", middleware.RequireAccess(checker, "blog", "update"), handler.Update)
		blogs.DELETE("/:id", middleware.RequireAccess(checker, "blog", "delete"), handler.Delete)
	}
}
