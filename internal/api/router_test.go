package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/app"
	iauth "github.com/lunarcms/lunar/internal/auth"
	"github.com/lunarcms/lunar/internal/database/testutil"
	"github.com/lunarcms/lunar/internal/models"
	"github.com/lunarcms/lunar/internal/rbac"
	"github.com/lunarcms/lunar/internal/realtime"
)

type routerFixture struct {
	router *gin.Engine
	jwt    *iauth.JWTService
	db     *gorm.DB
}

func setupRouter(t *testing.T) routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "router-secret",
		Issuer:         "test",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Auth.JWT.Secret = "router-secret"
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Health.Enabled = true

	checker, err := rbac.NewChecker(db)
	require.NoError(t, err)
	hub := realtime.NewHub(checker)
	t.Cleanup(hub.Close)

	router, err := NewRouter(db, jwtSvc, cfg, hub)
	require.NoError(t, err)

	return routerFixture{router: router, jwt: jwtSvc, db: db}
}

func (f routerFixture) tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	require.NoError(t, err)
	return token
}

func (f routerFixture) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func seedRouterUser(t *testing.T, db *gorm.DB, email string, role int) models.User {
	t.Helper()
	user := models.User{Email: email, Password: "hashed", Role: role, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	f := setupRouter(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/blogs", "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/categories/tree", "").Code)

	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/auth/me", "").Code)
	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/users", "").Code)
	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/admin/modules", "").Code)

	require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/nope", "").Code)
}

func TestRouterAdminOnlyCatalog(t *testing.T) {
	f := setupRouter(t)

	staff := seedRouterUser(t, f.db, "staff@lunar.dev", models.RoleUser)
	admin := seedRouterUser(t, f.db, "admin@lunar.dev", models.RoleAdmin)

	require.Equal(t, http.StatusForbidden,
		f.do(t, http.MethodGet, "/admin/modules", f.tokenFor(t, staff)).Code)
	require.Equal(t, http.StatusOK,
		f.do(t, http.MethodGet, "/admin/modules", f.tokenFor(t, admin)).Code)
}

func TestRouterCheckPermissionEnvelope(t *testing.T) {
	f := setupRouter(t)

	staff := seedRouterUser(t, f.db, "staff@lunar.dev", models.RoleUser)
	token := f.tokenFor(t, staff)

	var module models.PermissionModule
	require.NoError(t, f.db.First(&module, "name = ?", "blog").Error)
	var permission models.Permission
	require.NoError(t, f.db.First(&permission,
		"module_id = ? AND action = ?", module.ID, "view").Error)
	require.NoError(t, f.db.Create(&models.UserPermission{
		UserID:       staff.ID,
		PermissionID: permission.ID,
	}).Error)

	w := f.do(t, http.MethodGet, "/admin/check-user-permission?moduleName=blog&action=view", token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status     bool   `json:"status"`
		Message    string `json:"message"`
		Permission *bool  `json:"permission"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Status)
	require.NotNil(t, body.Permission)
	require.True(t, *body.Permission)

	// Unknown module stays a 200 with a false permission flag.
	w = f.do(t, http.MethodGet, "/admin/check-user-permission?moduleName=ghost&action=view", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.False(t, body.Status)
	require.NotNil(t, body.Permission)
	require.False(t, *body.Permission)
}

func TestRouterGuardedContentMutation(t *testing.T) {
	f := setupRouter(t)

	staff := seedRouterUser(t, f.db, "staff@lunar.dev", models.RoleUser)

	// Without a blog.delete grant the guard refuses outright.
	w := f.do(t, http.MethodDelete, "/api/blogs/some-id", f.tokenFor(t, staff))
	require.Equal(t, http.StatusForbidden, w.Code)

	admin := seedRouterUser(t, f.db, "admin@lunar.dev", models.RoleAdmin)
	w = f.do(t, http.MethodDelete, "/api/blogs/some-id", f.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Blog not found")
}

func TestRouterMetricsEndpoint(t *testing.T) {
	f := setupRouter(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "").Code)

	w := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "lunar_api_latency_seconds"))
}
