package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lunarcms/lunar/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Host)
	require.Equal(t, 5433, cfg.Database.Port)
	require.Equal(t, "lunar_cms", cfg.Database.Name)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "lunar-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.Equal(t, []string{
		"https://studio.example.com",
		"https://admin.example.com",
	}, cfg.CORS.AllowedOrigins)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Monitoring.Health.Enabled)

	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.Schedule)
	require.Equal(t, 7, cfg.Maintenance.RetentionDays)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.jwt.secret")
}

func TestJWTServiceConfigDefaults(t *testing.T) {
	var cfg AuthConfig
	cfg.JWT.Secret = "secret"

	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, auth.JWTConfig{
		Secret:         "secret",
		Issuer:         "lunar",
		AccessTokenTTL: defaultAccessTokenTTL,
	}, jwtCfg)
}

func TestDatabaseOptionsMapping(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:   "mysql",
		Host:     "localhost",
		Port:     3306,
		Username: "root",
		Password: "pw",
		Name:     "cms",
	}

	opts := cfg.DatabaseOptions()
	require.Equal(t, "mysql", opts.Driver)
	require.Equal(t, "localhost", opts.Host)
	require.Equal(t, 3306, opts.Port)
	require.Equal(t, "root", opts.User)
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, "cms", opts.Name)
}
