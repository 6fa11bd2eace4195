package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 50*time.Second, cfg.JWT.Leeway)
	assert.Equal(t, 20, cfg.Query.DefaultLimit)
	assert.Equal(t, 100, cfg.Query.MaxLimit)
	assert.True(t, cfg.Access.AnonymousReads)
	assert.True(t, cfg.Seed.DefaultCharacters)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", " SQLite ")
	t.Setenv("QUERY_MAX_LIMIT", "10")
	t.Setenv("QUERY_DEFAULT_LIMIT", "50")
	t.Setenv("ALLOW_ANONYMOUS_READS", "false")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, 10, cfg.Query.MaxLimit)
	assert.Equal(t, 10, cfg.Query.DefaultLimit)
	assert.False(t, cfg.Access.AnonymousReads)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
}

func TestLoadRejectsDevelopmentSecretsInProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cr3t-for-prod")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")

	t.Setenv("ADMIN_PASSWORD", "   ")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("ADMIN_PASSWORD", "a-real-password")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "s3cr3t-for-prod", cfg.JWT.Secret)
}
