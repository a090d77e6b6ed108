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
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Database.LockTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.Booking.PaymentWindow)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.MarkOverdue)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Reconcile)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.False(t, cfg.Booking.StrictGender)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATABASE_URL", "postgres://hostel@localhost/hostel")
	t.Setenv("BOOKING_FEE", "2500")
	t.Setenv("BOOKING_STRICT_GENDER", "true")
	t.Setenv("SCHEDULER_TICK", "30s")
	t.Setenv("SERVER_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://hostel@localhost/hostel", cfg.Database.URL)
	assert.Equal(t, int64(2500), cfg.Booking.Fee)
	assert.True(t, cfg.Booking.StrictGender)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Tick)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CorsAllowedOrigins)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("booking:\n  fee: 75\nscheduler:\n  no_show: 12h\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(75), cfg.Booking.Fee)
	assert.Equal(t, 12*time.Hour, cfg.Scheduler.NoShow)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"zero tick", map[string]string{"SCHEDULER_TICK": "0s"}, "SCHEDULER_TICK"},
		{"negative fee", map[string]string{"BOOKING_FEE": "-1"}, "BOOKING_FEE"},
		{"zero interval", map[string]string{"SCHEDULER_RECONCILE": "0s"}, "SCHEDULER_RECONCILE"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"prod default secret", map[string]string{"APP_ENV": "production"}, "JWT_SECRET"},
		{"prod half razorpay", map[string]string{"APP_ENV": "prod", "JWT_SECRET": "s3cret", "RAZORPAY_KEY_ID": "rzp_live"}, "RAZORPAY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
