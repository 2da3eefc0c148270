package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreFile, cfg.Store.Driver)
	assert.Equal(t, "students", cfg.Store.Key)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "roster:", cfg.Redis.KeyPrefix)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORE_DRIVER", " SQLite ")
	t.Setenv("STORE_KEY", "pupils")
	t.Setenv("STORE_TIMEOUT", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "pupils", cfg.Store.Key)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadReadsDotEnv(t *testing.T) {
	chdirTemp(t)
	// godotenv exports into the process; register restores first.
	for _, key := range []string{"STORE_DRIVER", "LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	require.NoError(t, os.WriteFile(".env", []byte("STORE_DRIVER=memory\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}
