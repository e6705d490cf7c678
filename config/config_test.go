package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  rate_limit_per_sec: 25
  rate_limit_burst: 50
database:
  dsn: "host=localhost user=app dbname=staffops"
  max_open_conns: 10
mail:
  host: smtp.example.com
  port: 587
  from: noreply@example.com
  send_timeout_seconds: 5
attendance:
  timezone: Asia/Tokyo
  late_grace_minutes: 15
  early_leave_grace_minutes: 10
  overtime_threshold_hours: 8
worker_pool:
  size: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5*time.Second, cfg.Mail.SendTimeout)
	assert.Equal(t, "Asia/Tokyo", cfg.Attendance.Timezone)
	assert.Equal(t, 15, cfg.Attendance.LateGraceMinutes)
	assert.Equal(t, 4, cfg.WorkerPool.Size)

	loc := cfg.Attendance.Location()
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
database:
  dsn: "host=localhost"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Mail.SendTimeout)
	assert.Equal(t, "UTC", cfg.Attendance.Timezone)
	assert.Equal(t, 8.0, cfg.Attendance.OvertimeThresholdHours)
	assert.Equal(t, 300*time.Second, cfg.Attendance.LookupCacheTTL)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, 60, cfg.Server.CacheTTLSeconds)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 64, cfg.WorkerPool.QueueSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := AttendanceConfig{Timezone: "Mars/Olympus_Mons"}
	assert.Equal(t, time.UTC, cfg.Location())
}
