package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Setenv("JWT_ACTIVATION_TOKEN_SECRET", "act-secret")
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/userhub")
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	setSecrets(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", c.App.Env)
	assert.True(t, c.IsDevelopment())
	assert.Equal(t, ":8000", c.Server.Addr)
	assert.Equal(t, "postgres", c.Storage.Driver)
	assert.Equal(t, "memory", c.Cache.Kind)
	assert.Equal(t, 30*time.Minute, c.JWT.ActivationTTL)
	assert.Equal(t, 30*time.Minute, c.AccessTTL())
	assert.Equal(t, 72*time.Hour, c.RefreshTTL())
	assert.Equal(t, c.RefreshTTL(), c.Session.TTL)
	assert.False(t, c.MediaEnabled())
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	setSecrets(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	setSecrets(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
app:
  env: production
server:
  addr: ":9000"
  read_timeout: 3s
storage:
  driver: sqlite
  dsn: "file::memory:"
jwt:
  access_expire_minutes: 5
  refresh_expire_days: 1
media:
  s3:
    bucket: avatars
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("PORT", "7000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ORIGIN", "http://localhost:3000, https://app.example.com")

	c, err := Load(path)
	require.NoError(t, err)

	assert.False(t, c.IsDevelopment())
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.Equal(t, 3*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "sqlite", c.Storage.Driver)
	// DATABASE_URL pisa el YAML
	assert.Equal(t, "postgres://localhost/userhub", c.Storage.DSN)
	assert.Equal(t, "redis", c.Cache.Kind)
	assert.Equal(t, 5*time.Minute, c.AccessTTL())
	assert.Equal(t, 24*time.Hour, c.Session.TTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, c.Server.CORSAllowedOrigins)
	assert.True(t, c.MediaEnabled())
}

func TestValidateRequiresSecrets(t *testing.T) {
	var c Config
	c.Storage.DSN = "x"
	c.ApplyDefaults()

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_TOKEN_SECRET")
	assert.Contains(t, err.Error(), "JWT_REFRESH_TOKEN_SECRET")
	assert.Contains(t, err.Error(), "JWT_ACTIVATION_TOKEN_SECRET")
}

func TestValidateRejectsSharedSecretsInProduction(t *testing.T) {
	var c Config
	c.App.Env = "production"
	c.Storage.DSN = "x"
	c.JWT.ActivationSecret = "a"
	c.JWT.AccessSecret = "same"
	c.JWT.RefreshSecret = "same"
	c.ApplyDefaults()

	require.Error(t, c.Validate())

	c.App.Env = "development"
	require.NoError(t, c.Validate())
}

func TestValidateUnknownDrivers(t *testing.T) {
	var c Config
	c.Storage.DSN = "x"
	c.Storage.Driver = "mongo"
	c.Cache.Kind = "memcached"
	c.JWT.ActivationSecret, c.JWT.AccessSecret, c.JWT.RefreshSecret = "a", "b", "c"
	c.ApplyDefaults()

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
	assert.Contains(t, err.Error(), "memcached")
}
