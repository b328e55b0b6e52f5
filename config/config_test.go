package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toumasadio2/PME-SI/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9090"
database:
  path: /tmp/leave-test.db
scheduler:
  enabled: true
  interval: 30m
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/leave-test.db", cfg.Database.Path)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
}

func TestLoad_DefaultsFillMissingFields(t *testing.T) {
	path := writeConfig(t, `listen_addr: ":3000"`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "./data/leave.db", cfg.Database.Path)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("LEAVE_DB_PATH", "/var/lib/leave.db")
	path := writeConfig(t, `
database:
  path: ${LEAVE_DB_PATH}
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/leave.db", cfg.Database.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/no/such/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.Validate())

	cfg.ListenAddr = ""
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Scheduler.Interval = 0
	assert.Error(t, cfg.Validate(), "enabled scheduler needs a positive interval")

	cfg.Scheduler.Enabled = false
	assert.NoError(t, cfg.Validate(), "interval is ignored when disabled")
}
