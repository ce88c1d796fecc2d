package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/lunarcms/lunar/internal/middleware"
	"github.com/lunarcms/lunar/internal/rbac"
	"github.com/lunarcms/lunar/internal/services"
	"github.com/lunarcms/lunar/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// identityFrom extracts the verified identity attached by the auth middleware.
func identityFrom(c *gin.Context) (rbac.Identity, bool) {
	return middleware.IdentityFrom(c)
}

// listOptions assembles the common search/page/limit/order query
// parameters understood by every list endpoint.
func listOptions(c *gin.Context) services.ListOptions {
	return services.ListOptions{
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 0),
		Limit:  parseIntQuery(c, "limit", 0),
		Order:  c.Query("order"),
	}
}

// paginationFor derives the response pagination block from the request
// options and the total row count.
func paginationFor(opts services.ListOptions, total int64) *response.Pagination {
	page, limit := opts.Normalized()
	pageCount := int((total + int64(limit) - 1) / int64(limit))
	return &response.Pagination{
		Page:      page,
		Limit:     limit,
		PageCount: pageCount,
		Total:     total,
	}
}
