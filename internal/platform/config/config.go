package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	DatabaseURL    string
	RedisAddr      string
	JWTSigningKey  string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("SHOPFLOOR_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "shopfloor"
	}
	audience := os.Getenv("JWT_AUDIENCE")
	if audience == "" {
		audience = "shopfloor-api"
	}

	ttl := 8 * time.Hour
	if raw := os.Getenv("ACCESS_TOKEN_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}

	return Server{
		Addr:           addr,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		JWTSigningKey:  jwtSigningKey,
		JWTIssuer:      issuer,
		JWTAudience:    audience,
		AccessTokenTTL: ttl,
	}
}
