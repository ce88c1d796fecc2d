package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/handlers"
	"github.com/lunarcms/lunar/internal/middleware"
)

type accessRouteDeps struct {
	Modules     *handlers.ModuleHandler
	Permissions *handlers.PermissionHandler
	Grants      *handlers.GrantHandler
}

// registerAccessRoutes mounts the permission catalog and grant
// management endpoints. Catalog and grant mutation is reserved for
// admins; the check endpoint is open to any authenticated caller since
// it only ever answers for the caller's own identity.
func registerAccessRoutes(admin *gin.RouterGroup, deps accessRouteDeps) {
	requireAdmin := middleware.RequireAdmin()

	admin.POST("/module", requireAdmin, deps.Modules.Create)
	admin.GET("/modules", requireAdmin, deps.Modules.List)
	admin.GET("/module/:id", requireAdmin, deps.Modules.Get)
	admin.PUT("/module/:id", requireAdmin, deps.Modules.Update)
	admin.DELETE("/module/:id", requireAdmin, deps.Modules.Delete)

	admin.POST("/permission", requireAdmin, deps.Permissions.Create)
	admin.GET("/permissions", requireAdmin, deps.Permissions.List)
	admin.GET("/permission/:id", requireAdmin, deps.Permissions.Get)
	admin.PUT("/permission/:id", requireAdmin, deps.Permissions.Update)
	admin.DELETE("/permission/:id", requireAdmin, deps.Permissions.Delete)

	admin.POST("/user-permission/assign", requireAdmin, deps.Grants.Assign)
	admin.POST("/user-permission/revoke", requireAdmin, deps.Grants.Revoke)
	admin.GET("/user-permission", requireAdmin, deps.Grants.ListAll)
	admin.GET("/user-permission/:user_id", requireAdmin, deps.Grants.ListForUser)

	admin.GET("/check-user-permission", deps.Grants.Check)
}
