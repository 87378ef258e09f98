package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: ${TEST_DB_HOST}
    database: complaints
    user: notifier
  redis:
    address: localhost:6379
workers:
  return-status-notify:
    enabled: true
    timeout: 15000
notifications:
  dispatch:
    parallel: false
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("AWS_REGION", "eu-central-1")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "return-notifier", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "eu-central-1", cfg.Notifications.AWS.Region)
	assert.Equal(t, "complaintClientSmsBody", cfg.Notifications.SMS.TemplateKey)
	assert.True(t, cfg.Notifications.Email.Enabled)
	assert.False(t, cfg.Notifications.Dispatch.Parallel)
	assert.Equal(t, 4, cfg.Notifications.Dispatch.MaxParallelSends)
	assert.Equal(t, 300000, cfg.Notifications.CacheTTL)

	wc := GetWorkerConfig(cfg, "return-status-notify")
	assert.Equal(t, 15000, wc.Timeout)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.Equal(t, 3, wc.MaxRetries)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("NOTIFICATIONS_SMS_SENDER_ID", "SHOP")
	t.Setenv("HTTP_ADDRESS", ":9090")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "SHOP", cfg.Notifications.SMS.SenderID)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Run("unset variable fails validation by key", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "")

		_, err := LoadFromFile(writeConfig(t, minimalYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.postgres.host is required")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestGetWorkerConfig_Default(t *testing.T) {
	wc := GetWorkerConfig(&Config{}, "unknown")
	assert.Equal(t, WorkerConfig{Enabled: true, MaxJobsActive: 5, Timeout: 30000, MaxRetries: 3}, wc)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", p.GetDSN())
}
