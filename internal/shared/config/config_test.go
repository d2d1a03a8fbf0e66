package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REMINDER_HORIZONS", "")
	t.Setenv("CRON_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "s3cret", cfg.CronSecret)
	assert.Equal(t, []time.Duration{time.Hour, 24 * time.Hour}, cfg.ReminderHorizons)
	assert.Equal(t, 5*time.Minute, cfg.ReminderWindow)
	assert.Equal(t, time.Duration(0), cfg.SweepInterval)
	assert.Zero(t, cfg.DBMaxConns)
	assert.Zero(t, cfg.DBMinConns)
}

func TestLoad_PoolSize(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("DB_MIN_CONNS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 2, cfg.DBMinConns)
}

func TestLoad_CustomHorizons(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REMINDER_HORIZONS", "30m, 2h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{30 * time.Minute, 2 * time.Hour}, cfg.ReminderHorizons)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad_driver", "STORE_DRIVER", "sqlite"},
		{"bad_horizon", "REMINDER_HORIZONS", "soon"},
		{"negative_horizon", "REMINDER_HORIZONS", "-1h"},
		{"bad_timeout", "NOTIFY_TIMEOUT", "ten"},
		{"negative_pool", "DB_MAX_CONNS", "-1"},
		{"min_above_max", "DB_MIN_CONNS", "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORE_DRIVER", "memory")
			t.Setenv("DB_MAX_CONNS", "10")
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestGetIntEnv(t *testing.T) {
	t.Setenv("SOME_INT", "7")
	t.Setenv("NOT_INT", "x")
	assert.Equal(t, 7, GetIntEnv("SOME_INT", 1))
	assert.Equal(t, 1, GetIntEnv("NOT_INT", 1))
	assert.Equal(t, 3, GetIntEnv("MISSING_INT_KEY", 3))
}
