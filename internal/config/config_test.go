package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.NotContains(t, cfg.Storage.Path, "~")
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "http://localhost:9000/")
	t.Setenv("STOREFRONT_API_TIMEOUT", "5s")
	t.Setenv("STOREFRONT_STORAGE_DRIVER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	content := []byte("api:\n  base_url: http://shop.test\n  timeout: 3s\nstorage:\n  driver: redis\nredis:\n  addr: cache:6379\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://shop.test", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestValidate(t *testing.T) {
	valid := Config{
		API:     APIConfig{BaseURL: "http://localhost:8000", Timeout: time.Second},
		Storage: StorageConfig{Driver: StorageMemory},
	}
	require.NoError(t, valid.Validate())

	badURL := valid
	badURL.API.BaseURL = "localhost"
	assert.Error(t, badURL.Validate())

	badTimeout := valid
	badTimeout.API.Timeout = 0
	assert.Error(t, badTimeout.Validate())

	badDriver := valid
	badDriver.Storage.Driver = "sqlite"
	assert.Error(t, badDriver.Validate())

	noPath := valid
	noPath.Storage = StorageConfig{Driver: StorageFile}
	assert.Error(t, noPath.Validate())
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_VALUE", "set")

	assert.Equal(t, "set", GetEnvOrDefault("STOREFRONT_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnvOrDefault("STOREFRONT_TEST_UNSET", "fallback"))
}
