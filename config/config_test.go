package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-hexagonal-users/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("USER_CACHE_TTL", "")
	t.Setenv("AUTH_ENABLED", "")

	cfg := config.Load()
	assert.Equal(t, config.DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 5*time.Minute, cfg.UserCacheTTL)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, "users.local", cfg.UserEmailDomain)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("USER_CACHE_TTL", "30s")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("DB_MAX_CONNS", "nope")
	t.Setenv("ELASTICSEARCH_ADDRS", " http://a:9200 ,, http://b:9200")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := config.Load()
	assert.Equal(t, config.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, ":memory:", cfg.SQLitePath)
	assert.Equal(t, 30*time.Second, cfg.UserCacheTTL)
	assert.False(t, cfg.AuthEnabled)
	assert.Equal(t, int32(10), cfg.DBMaxConns, "invalid values fall back to the default")
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, cfg.ESAddrs())
	assert.Empty(t, cfg.CORSOrigins())
}

func TestPostgresDSN_EscapesCredentials(t *testing.T) {
	cfg := &config.Config{
		DBUser: "app", DBPassword: "p@ss/word", DBHost: "db", DBPort: "5432", DBName: "users", DBSSLMode: "disable",
	}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/users?sslmode=disable", cfg.PostgresDSN())
}

func TestMailConfigured(t *testing.T) {
	cfg := &config.Config{MailSendEnabled: true, MailgunDomain: "mg.example.com", MailgunAPIKey: "key"}
	assert.True(t, cfg.MailConfigured())
	cfg.MailSendEnabled = false
	assert.False(t, cfg.MailConfigured())
}
