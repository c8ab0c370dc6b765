package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamverse-backend/pkg/database"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "STORAGE_BACKEND", "KV_REST_API_URL", "KV_REST_API_TOKEN",
	"KV_KEY", "POSTGRES_DSN", "DATA_FILE", "ALLOWED_ORIGINS", "DEBUG",
	"API_BASE_URL", "LOCAL_STORE_PATH", "REQUEST_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg := LoadConfig()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, database.BackendAuto, cfg.StorageBackend)
	assert.Equal(t, database.DefaultKVKey, cfg.KVKey)
	assert.Equal(t, database.DefaultDataFile, cfg.DataFile)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORAGE_BACKEND", "KV")
	t.Setenv("KV_REST_API_URL", " https://kv.test \n")
	t.Setenv("KV_REST_API_TOKEN", "token")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("DEBUG", "true")
	t.Setenv("REQUEST_TIMEOUT", "2")

	cfg := LoadConfig()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "kv", cfg.StorageBackend)
	assert.Equal(t, "https://kv.test", cfg.KVRestURL)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Debug, "production forces debug off")
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)

	dbCfg := cfg.DatabaseConfig()
	assert.Equal(t, "kv", dbCfg.Backend)
	assert.Equal(t, "token", dbCfg.KVRestToken)
}

func TestLoadConfig_DotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"),
		[]byte("PORT=4000\nDATA_FILE=\"/srv/sites.json\"\n# comment\nKV_KEY=from-file\n"), 0o644))
	t.Setenv("KV_KEY", "from-env")

	cfg := LoadConfig()
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "/srv/sites.json", cfg.DataFile)
	assert.Equal(t, "from-env", cfg.KVKey)
}

func TestValidate(t *testing.T) {
	base := Config{Port: "3000", StorageBackend: "auto", RequestTimeout: time.Second}
	require.NoError(t, base.Validate())

	bad := base
	bad.Port = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.StorageBackend = "redis"
	assert.ErrorContains(t, bad.Validate(), "STORAGE_BACKEND")

	bad = base
	bad.StorageBackend = "postgres"
	assert.ErrorContains(t, bad.Validate(), "POSTGRES_DSN")

	bad = base
	bad.RequestTimeout = 0
	assert.Error(t, bad.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
