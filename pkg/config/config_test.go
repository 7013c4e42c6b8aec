package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "data/data.pdf", cfg.ETL.InputPath)
		assert.Equal(t, "generated", cfg.ETL.AuditDir)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.False(t, cfg.Cron.Enabled)
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		t.Setenv("ETL_INPUT_PATH", "/srv/input/invoices.pdf")
		t.Setenv("ETL_AUDIT_DIR", "/srv/audit")
		t.Setenv("SERVER_PORT", "9091")
		t.Setenv("ETL_CRON_ENABLED", "true")
		t.Setenv("ETL_CRON_SPEC", "30 1 * * *")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/srv/input/invoices.pdf", cfg.ETL.InputPath)
		assert.Equal(t, "/srv/audit", cfg.ETL.AuditDir)
		assert.Equal(t, 9091, cfg.Server.Port)
		assert.True(t, cfg.Cron.Enabled)
		assert.Equal(t, "30 1 * * *", cfg.Cron.Spec)
	})

	t.Run("ignores malformed numeric values", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "not-a-port")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "etl",
		Password: "secret",
		Database: "records",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=etl password=secret dbname=records sslmode=require",
		cfg.DSN(),
	)
}
