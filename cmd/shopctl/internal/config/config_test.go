package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "", cfg.Store)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:3000", cfg.ListenAddr)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 64, cfg.MenuCacheSize)
	assert.False(t, cfg.NonInteractive)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SHOPCTL_SERVER_URL", "https://api.example.com")
	t.Setenv("SHOPCTL_STORE", "memory:")
	t.Setenv("SHOPCTL_NON_INTERACTIVE", "true")
	t.Setenv("SHOPCTL_CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.ServerURL)
	assert.Equal(t, "memory:", cfg.Store)
	assert.True(t, cfg.NonInteractive)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHOPCTL_LOG_LEVEL=debug\nSHOPCTL_SERVER_URL=http://dotenv:8080\n"), 0o600))
	t.Setenv("SHOPCTL_SERVER_URL", "http://env:8080")
	// godotenv sets variables it loads; register them for cleanup
	t.Setenv("SHOPCTL_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("SHOPCTL_LOG_LEVEL"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://env:8080", cfg.ServerURL)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SHOPCTL_MENU_CACHE_SIZE", "lots")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "parse environment")
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() { MustFromContext(context.Background()) })

	global := &GlobalConfig{Config: &Config{ServerURL: "http://x"}}
	ctx := InjectConfig(context.Background(), global)
	assert.Same(t, global, MustFromContext(ctx))
}
