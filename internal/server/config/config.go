// Package config handles configuration for the Click Store server: built-in
// defaults, an optional JSON file, environment variables (including a
// config.env / .env file) and command-line flags, applied in that order.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the server.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the HTTP API.
//   - DatabaseDSN: full PostgreSQL DSN; when empty it is assembled from the DB* parts.
//   - SecretKey: signs session cookies and keys the owner-token HMAC.
//   - APIKey: static shared secret expected in the x-api-key header.
//   - SessionTTL: sliding idle timeout; SessionMaxAge: absolute session lifetime.
//   - RedisURL: when set, sessions live in Redis instead of PostgreSQL.
//   - S3*: optional receipt archive; disabled while S3Bucket is empty.
//   - LoginRate / LoginBurst: per-client token bucket on login and registration.
type Config struct {
	EndpointAddrHTTP string

	DatabaseDSN    string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxOpenConns int
	DBMaxIdleConns int

	SecretKey            string
	APIKey               string
	SessionTTL           time.Duration
	SessionMaxAge        time.Duration
	SessionSweepInterval time.Duration
	CookieSecure         bool
	RedisURL             string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	LoginRate  float64
	LoginBurst int

	LogBackend         string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secrets below are for local use only and must be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":5000"

	c.DBHost = "postgres"
	c.DBPort = 5432
	c.DBUser = "postgres"
	c.DBPassword = "postgres"
	c.DBName = "clickstore"
	c.DBMaxOpenConns = 20
	c.DBMaxIdleConns = 5

	c.SecretKey = "mysecret"
	c.APIKey = "mysecretapikey"
	c.SessionTTL = 24 * time.Hour
	c.SessionMaxAge = 7 * 24 * time.Hour
	c.SessionSweepInterval = 10 * time.Minute

	c.S3Region = "us-east-1"

	c.LoginRate = 1
	c.LoginBurst = 5

	c.LogBackend = "slog"
	c.CORSAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	c.ShutdownTimeout = 10 * time.Second
}

// DSN returns DatabaseDSN, or a postgres:// URL built from the DB* parts.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// ReceiptArchiveEnabled reports whether generated receipts are copied to S3.
func (c *Config) ReceiptArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig builds a Config from defaults, then overlays the JSON file,
// the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
