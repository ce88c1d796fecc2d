package app

import (
	"time"

	"github.com/lunarcms/lunar/internal/auth"
)

const defaultAccessTokenTTL = 24 * time.Hour

// JWTServiceConfig adapts the configuration into the auth package's
// JWT settings, applying defaults when values are unset.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}

	issuer := c.JWT.Issuer
	if issuer == "" {
		issuer = "lunar"
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         issuer,
		AccessTokenTTL: ttl,
	}
}
