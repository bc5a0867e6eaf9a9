package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobboe/hspriveko/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HSPRIVEKO_TEST_VALUE=from-file\n"), 0o644))
	t.Setenv("HSPRIVEKO_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("HSPRIVEKO_TEST_VALUE"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("HSPRIVEKO_TEST_VALUE"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("PORT", "")

	cfg, err := LoadAndValidateConfig(func(c *config.Config) { c.DataBackend = config.BackendMemory })
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.DataBackend)

	_, err = LoadAndValidateConfig(func(c *config.Config) { c.Port = "nope" })
	assert.Error(t, err)
}

func TestOpenBackend(t *testing.T) {
	cfg, err := LoadAndValidateConfig(func(c *config.Config) {
		c.DataBackend = config.BackendSQLite
		c.SQLiteDBPath = filepath.Join(t.TempDir(), "budget.db")
		c.AMQPURL = ""
		c.SeedFile = ""
	})
	require.NoError(t, err)

	b, err := OpenBackend(context.Background(), nil, cfg)
	require.NoError(t, err)
	assert.NoError(t, b.Close())
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("debug", "worker", &buf)
	assert.Equal(t, "worker", logger.Component())
	assert.True(t, logger.Enabled(context.Background(), -4))

	logger.Info("tick")
	assert.Contains(t, buf.String(), "component=worker")
}
