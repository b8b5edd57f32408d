package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
store:
  driver: postgres
  dsn: postgres://localhost/fieldwork
history:
  limit: 20
factors:
  timing: false
  quota_skew: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0644))
	t.Setenv("FIELDWORK_SERVER_PORT", "9090")
	t.Setenv("FIELDWORK_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, model.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/fieldwork", cfg.Store.DSN)
	assert.Equal(t, 20, cfg.GetHistoryLimit())
	assert.False(t, cfg.Factors.Timing)
	assert.False(t, cfg.Factors.QuotaSkew)
	assert.True(t, cfg.Factors.Vendor)
	assert.Equal(t, 9090, cfg.GetServerPort())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_SearchesParentDirectories(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), []byte("store:\n  driver: memory\n"), 0644))
	t.Chdir(nested)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, model.DriverMemory, cfg.Store.Driver)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := model.DefaultConfig()
	cfg.Store.Driver = model.DriverMongo
	cfg.Store.Database = "surveys"
	cfg.Factors.Audience = false

	file := filepath.Join(dir, "custom.yml")
	require.NoError(t, Save(file, cfg))

	loaded, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(file, []byte("store: [unclosed"), 0644))

	_, err := Load(file)
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(model.LogConfig{Level: "warn", Format: "json"}))
	assert.True(t, zap.L().Core().Enabled(zapcore.WarnLevel))
	assert.False(t, zap.L().Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, InitLogger(model.LogConfig{Level: "loud"}))
}
