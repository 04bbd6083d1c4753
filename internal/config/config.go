package config

import "os"

// Config is the process configuration, loaded once at startup.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTAudience   string
	JWTIssuer     string
	ClientID      string
	SiteMode      string
	RedisAddr     string
	RedisPassword string
	AMQPURL       string
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		JWTSecret:     getenv("JWT_SECRET", ""),
		JWTAudience:   getenv("JWT_AUDIENCE", "user-manager"),
		JWTIssuer:     getenv("JWT_ISSUER", "user-manager"),
		ClientID:      getenv("CLIENT_ID", ""),
		SiteMode:      getenv("SITE_MODE", ""),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		AMQPURL:       getenv("AMQP_URL", ""),
	}
}

// IsLocal reports whether the service runs in local mode, which relaxes the
// client id check.
func (c Config) IsLocal() bool {
	return c.SiteMode == "local"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
