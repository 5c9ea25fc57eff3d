// config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds process configuration, env-first with defaults. The database
// DSN is deliberately not a plain field here: it travels through ConnString
// so uninitialized access is an explicit error, not an empty string.
type Config struct {
	ListenAddr string
	TLSCert    string
	TLSKey     string

	SchemaPath     string
	MigrationsPath string

	DatabaseURL string

	TokenSecret   string
	TokenIssuer   string
	TokenAudience string
	TokenTTL      time.Duration

	AdminRole string
	DevBypass bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		ListenAddr: getEnv("SERVER_LISTEN_ADDRESS", ":4000"),
		TLSCert:    os.Getenv("SSL_SERVER_CERTIFICATE"),
		TLSKey:     os.Getenv("SSL_SERVER_KEY"),

		SchemaPath:     getEnv("SCHEMA_PATH", "schema.toml"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		TokenSecret:   os.Getenv("TOKEN_SECRET"),
		TokenIssuer:   getEnv("TOKEN_ISSUER", "tasklight"),
		TokenAudience: getEnv("TOKEN_AUDIENCE", "tasklight-api"),
		TokenTTL:      getEnvDuration("TOKEN_TTL_SECONDS", 8*time.Hour),

		AdminRole: os.Getenv("ADMIN_ROLE_NAME"),
		DevBypass: os.Getenv("AUTH_DEV_BYPASS") == "true",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
