package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8081")
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "store")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("API_KEY", "env-key")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("LOGIN_RATE", "0.5")
	t.Setenv("LOGIN_BURST", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":8081", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://store:pw@db.local:6543/shop?sslmode=disable", c.DSN())
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, "env-key", c.APIKey)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.True(t, c.CookieSecure)
	assert.Equal(t, 0.5, c.LoginRate)
	assert.Equal(t, 3, c.LoginBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowedOrigins)
}

func TestParseEnv_BadValuesKeepDefaults(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("COOKIE_SECURE", "maybe")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, 5432, c.DBPort)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.False(t, c.CookieSecure)
}

func TestParseEnv_LoadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	require.NoError(t, os.WriteFile(path, []byte("API_KEY=from-file\nS3_BUCKET=receipts\n"), 0o600))

	orig := envFiles
	envFiles = []string{path}
	t.Cleanup(func() {
		envFiles = orig
		_ = os.Unsetenv("S3_BUCKET")
	})
	// Process env wins over file values; clear it so the file applies.
	t.Setenv("API_KEY", "")
	require.NoError(t, os.Unsetenv("API_KEY"))

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "from-file", c.APIKey)
	assert.Equal(t, "receipts", c.S3Bucket)
	assert.True(t, c.ReceiptArchiveEnabled())
}
