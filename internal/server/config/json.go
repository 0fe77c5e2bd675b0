package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clickstore/internal/flagx"
	"github.com/dmitrijs2005/clickstore/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Durations use
// timex.Duration so both "24h" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	APIKey             string         `json:"api_key"`
	SessionTTL         timex.Duration `json:"session_ttl"`
	SessionMaxAge      timex.Duration `json:"session_max_age"`
	CookieSecure       *bool          `json:"cookie_secure"`
	RedisURL           string         `json:"redis_url"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	LoginRate          float64        `json:"login_rate"`
	LoginBurst         int            `json:"login_burst"`
	LogBackend         string         `json:"log_backend"`
	CORSAllowedOrigins []string       `json:"cors_allowed_origins"`
}

// parseJson overlays the file named by -c/-config (or $CONFIG) onto config.
// Only keys present with a non-zero value replace what is already set. An
// unreadable or malformed file panics: the server must not start on a
// half-applied configuration.
func parseJson(config *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.APIKey, c.APIKey)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogBackend, c.LogBackend)

	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.SessionMaxAge.Duration > 0 {
		config.SessionMaxAge = c.SessionMaxAge.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.LoginRate > 0 {
		config.LoginRate = c.LoginRate
	}
	if c.LoginBurst > 0 {
		config.LoginBurst = c.LoginBurst
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
