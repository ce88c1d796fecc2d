package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/handlers"
	"github.com/lunarcms/lunar/internal/middleware"
	"github.com/lunarcms/lunar/internal/rbac"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler, checker *rbac.Checker) {
	users := api.Group("/users")
	{
		users.GET("", middleware.RequireAccess(checker, "user", "view"), handler.List)
		users.GET("/:id", middleware.RequireAccess(checker, "user", "view"), handler.Get)
		users.PUT("/:id", middleware.RequireAccess(checker, "user", "update"), handler.Update)
		users.DELETE("/:id", middleware.RequireAccess(checker, "user", "delete"), handler.Delete)
	}
}
