package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lunarcms/lunar/pkg/response"
)

// Health reports liveness plus database reachability, useful for
// readiness checks.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(requestContext(c)) != nil {
				dbStatus = "unreachable"
			}
		}
		response.OK(c, gin.H{"status": "ok", "database": dbStatus})
	}
}
