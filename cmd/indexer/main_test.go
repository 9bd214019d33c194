package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xdefence/basetrace/internal/alert"
	"github.com/0xdefence/basetrace/internal/config"
	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestBridgeAddresses(t *testing.T) {
	assert.Equal(t, alert.DefaultBridgeAddresses, bridgeAddresses(config.AlertConfig{}))

	custom := []string{"0xbridge"}
	assert.Equal(t, custom, bridgeAddresses(config.AlertConfig{BridgeAddresses: custom}))
}

func TestLoadPresets(t *testing.T) {
	presets, err := loadPresets("")
	require.NoError(t, err)
	assert.Equal(t, alert.DefaultPresets(), presets)

	_, err = loadPresets(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
presets:
  night:
    fan_out_spike:
      min_ratio: 6
      min_delta: 50
      min_count: 60
      cooldown_hours: 12
      enabled: true
`), 0o600))
	presets, err = loadPresets(path)
	require.NoError(t, err)
	require.Contains(t, presets, "night")
	assert.Equal(t, 6.0, presets["night"][model.RuleFanOutSpike].MinRatio)
}

func TestBuildNotifierChannels(t *testing.T) {
	cfg := &config.Config{Notify: config.NotifyConfig{
		SlackWebhookURL: "https://hooks.slack.test/x",
		WebhookURL:      "https://alerts.test/hook",
	}}

	channels, closers, err := buildNotifierChannels(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.Empty(t, closers)
	require.Len(t, channels, 2)
	assert.IsType(t, &alert.SlackNotifier{}, channels[0])
	assert.IsType(t, &alert.WebhookNotifier{}, channels[1])
}

func TestBuildNotifierChannels_None(t *testing.T) {
	channels, closers, err := buildNotifierChannels(context.Background(), &config.Config{}, discardLogger())
	require.NoError(t, err)
	assert.Empty(t, channels)
	assert.Empty(t, closers)
}

func TestBuildNotifierChannels_BadRedisURL(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{URL: "not-a-redis-url", AlertStream: "s"}}

	_, _, err := buildNotifierChannels(context.Background(), cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis alert stream")
}

type fakeSweeper struct {
	calls chan int
}

func (f *fakeSweeper) Sweep(_ context.Context, limit int) ([]model.Alert, error) {
	f.calls <- limit
	return nil, nil
}

func TestStartSweepCron_Disabled(t *testing.T) {
	c, err := startSweepCron(context.Background(), "", &fakeSweeper{}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStartSweepCron_InvalidSchedule(t *testing.T) {
	_, err := startSweepCron(context.Background(), "every now and then", &fakeSweeper{}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALERT_SWEEP_SCHEDULE")
}

func TestStartSweepCron_RunsSweep(t *testing.T) {
	sw := &fakeSweeper{calls: make(chan int, 1)}
	c, err := startSweepCron(context.Background(), "@every 1s", sw, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Stop()

	select {
	case limit := <-sw.calls:
		assert.Equal(t, alert.MaxLimit, limit)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled sweep did not run")
	}
}

func TestRunHealthServer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runHealthServer(ctx, 0, discardLogger()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("health server did not stop")
	}
}
