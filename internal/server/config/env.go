package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFiles are loaded, if present, before the environment is read. Variables
// already set in the process environment take precedence over file values.
var envFiles = []string{"config.env", ".env"}

// parseEnv overlays environment variables onto config.
func parseEnv(config *Config) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	config.EndpointAddrHTTP = getEnvAsString("SERVER_ADDR", config.EndpointAddrHTTP)

	config.DatabaseDSN = getEnvAsString("DATABASE_DSN", config.DatabaseDSN)
	config.DBHost = getEnvAsString("DB_HOST", config.DBHost)
	config.DBPort = getEnvAsInt("DB_PORT", config.DBPort)
	config.DBUser = getEnvAsString("DB_USER", config.DBUser)
	config.DBPassword = getEnvAsString("DB_PASSWORD", config.DBPassword)
	config.DBName = getEnvAsString("DB_NAME", config.DBName)
	config.DBMaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", config.DBMaxOpenConns)
	config.DBMaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", config.DBMaxIdleConns)

	config.SecretKey = getEnvAsString("SECRET_KEY", config.SecretKey)
	config.APIKey = getEnvAsString("API_KEY", config.APIKey)
	config.SessionTTL = getEnvAsDuration("SESSION_TTL", config.SessionTTL)
	config.SessionMaxAge = getEnvAsDuration("SESSION_MAX_AGE", config.SessionMaxAge)
	config.SessionSweepInterval = getEnvAsDuration("SESSION_SWEEP_INTERVAL", config.SessionSweepInterval)
	config.CookieSecure = getEnvAsBool("COOKIE_SECURE", config.CookieSecure)
	config.RedisURL = getEnvAsString("REDIS_URL", config.RedisURL)

	config.S3RootUser = getEnvAsString("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = getEnvAsString("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getEnvAsString("S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnvAsString("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnvAsString("S3_BASE_ENDPOINT", config.S3BaseEndpoint)

	config.LoginRate = getEnvAsFloat("LOGIN_RATE", config.LoginRate)
	config.LoginBurst = getEnvAsInt("LOGIN_BURST", config.LoginBurst)

	config.LogBackend = getEnvAsString("LOG_BACKEND", config.LogBackend)
	config.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", config.ShutdownTimeout)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); strings.TrimSpace(v) != "" {
		config.CORSAllowedOrigins = splitList(v)
	}
}

func getEnvAsString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
