package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "digest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfile(t, `
site:
  name: Example Forum
database:
  dsn: postgres://digest@localhost/site?sslmode=disable
snowflake:
  enabled: true
  account: xy12345
  user: digest
  password: secret
  database: ANALYTICS
  warehouse: REPORTING
ses:
  region: us-east-1
  from: reports@example.com
schedule:
  cron: "30 7 1 * *"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Example Forum", cfg.Site.Name)
	assert.Equal(t, "postgres://digest@localhost/site?sslmode=disable", cfg.Database.DSN)
	assert.True(t, cfg.Snowflake.Enabled)
	assert.Equal(t, "xy12345", cfg.Snowflake.Account)
	assert.Equal(t, "REPORTING", cfg.Snowflake.Warehouse)
	assert.Equal(t, "reports@example.com", cfg.SES.From)
	assert.Equal(t, "30 7 1 * *", cfg.Schedule.Cron)
}

func TestLoadDefaults(t *testing.T) {
	path := writeProfile(t, `
database:
  dsn: postgres://digest@localhost/site
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Site", cfg.Site.Name)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0 8 1 * *", cfg.Schedule.Cron)
	assert.False(t, cfg.Snowflake.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
