package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "roomhub.db", cfg.DB.Path)
	assert.Equal(t, 3*time.Second, cfg.Dispatch.Timeout)
	assert.Equal(t, "/control", cfg.Dispatch.Path)
	assert.Equal(t, "/config", cfg.ConfigPush.Path)
	assert.Equal(t, DedupNone, cfg.Schedule.Dedup)
	assert.Equal(t, "roomhub:fired:", cfg.Redis.KeyPrefix)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "/ws/camera", cfg.Camera.Path)
	assert.Equal(t, 4, cfg.Camera.ViewerBuffer)
	assert.Equal(t, int64(1<<20), cfg.Camera.MaxMessageBytes)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
dispatch:
  timeout: 750ms
schedule:
  timezone: Europe/Berlin
  dedup: memory
mqtt:
  enabled: true
  broker: tcp://broker:1883
  qos: 1
`)
	t.Setenv("ROOMHUB_SERVER_PORT", "7070")
	t.Setenv("ROOMHUB_CAMERA_VIEWER_BUFFER", "16")
	t.Setenv("ROOMHUB_INFLUXDB_TOKEN", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Dispatch.Timeout)
	assert.Equal(t, DedupMemory, cfg.Schedule.Dedup)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, 1, cfg.MQTT.QoS)
	assert.Equal(t, 16, cfg.Camera.ViewerBuffer)
	assert.Equal(t, "secret", cfg.InfluxDB.Token)

	loc, err := cfg.Schedule.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown_dedup", "schedule:\n  dedup: sometimes\n", "unknown schedule.dedup"},
		{"zero_timeout", "dispatch:\n  timeout: 0s\n", "dispatch.timeout must be positive"},
		{"bad_timezone", "schedule:\n  timezone: Mars/Olympus\n", "schedule.timezone"},
		{"mqtt_qos", "mqtt:\n  enabled: true\n  qos: 3\n", "mqtt.qos"},
		{"influx_incomplete", "influxdb:\n  enabled: true\n", "influxdb.url"},
		{"viewer_buffer", "camera:\n  viewer_buffer: 0\n", "camera.viewer_buffer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}
