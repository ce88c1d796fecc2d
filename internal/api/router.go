package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/app"
	iauth "github.com/lunarcms/lunar/internal/auth"
	"github.com/lunarcms/lunar/internal/handlers"
	"github.com/lunarcms/lunar/internal/middleware"
	"github.com/lunarcms/lunar/internal/rbac"
	"github.com/lunarcms/lunar/internal/realtime"
	"github.com/lunarcms/lunar/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, hub *realtime.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if hub == nil {
		return nil, fmt.Errorf("realtime hub must be provided")
	}

	checker, err := rbac.NewChecker(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins...))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// Websocket upgrade authenticates during the handshake, so it sits
	// outside the auth middleware chain.
	r.GET("/ws", handlers.NewRealtimeHandler(hub, jwt).Serve)

	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	admin := r.Group("/admin")
	admin.Use(requireAuth)

	authService, err := services.NewAuthService(db, jwt)
	if err != nil {
		return nil, err
	}
	registerAuthRoutes(r, api, handlers.NewAuthHandler(authService))

	catalog, err := services.NewCatalogService(db)
	if err != nil {
		return nil, err
	}
	grants, err := services.NewGrantService(db)
	if err != nil {
		return nil, err
	}
	registerAccessRoutes(admin, accessRouteDeps{
		Modules:     handlers.NewModuleHandler(catalog),
		Permissions: handlers.NewPermissionHandler(catalog),
		Grants:      handlers.NewGrantHandler(grants, checker),
	})

	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	registerUserRoutes(api, handlers.NewUserHandler(users), checker)

	blogs, err := services.NewBlogService(db)
	if err != nil {
		return nil, err
	}
	registerBlogRoutes(r, api, handlers.NewBlogHandler(blogs), checker)

	categories, err := services.NewCategoryService(db)
	if err != nil {
		return nil, err
	}
	registerCategoryRoutes(r, api, handlers.NewCategoryHandler(categories), checker)

	seo, err := services.NewSEOService(db)
	if err != nil {
		return nil, err
	}
	registerSEORoutes(r, api, handlers.NewSEOHandler(seo), checker)

	forms, err := services.NewFormService(db)
	if err != nil {
		return nil, err
	}
	registerFormRoutes(r, api, handlers.NewFormHandler(forms), checker)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
