package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qachat/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func readLogs(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	out := make(map[string]string)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(data)
	}
	return out
}

func TestProductionModeIsSilent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Initialize(config.LoggingConfig{Dir: dir, Level: "debug"}))
	t.Cleanup(CloseAll)

	assert.False(t, IsDebugMode())
	Get(CategoryAPI).Info("should not be written")
	Sync()

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "logs dir must not be created outside debug mode")
}

func TestDebugModeWritesPerCategoryFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Initialize(config.LoggingConfig{
		Dir:       dir,
		Level:     "debug",
		Format:    "json",
		DebugMode: true,
	}))
	t.Cleanup(CloseAll)

	Get(CategoryAPI).Debug("request failed")
	Get(CategoryUI).Info("resized")
	Sync()

	logs := readLogs(t, dir)
	require.Len(t, logs, 2)

	var api, ui string
	for name, body := range logs {
		switch {
		case strings.HasSuffix(name, "_api.log"):
			api = body
		case strings.HasSuffix(name, "_ui.log"):
			ui = body
		}
	}
	assert.Contains(t, api, `"msg":"request failed"`)
	assert.Contains(t, api, `"logger":"api"`)
	assert.Contains(t, ui, "resized")
}

func TestDisabledCategory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Initialize(config.LoggingConfig{
		Dir:        dir,
		DebugMode:  true,
		Categories: map[string]bool{"ui": false},
	}))
	t.Cleanup(CloseAll)

	Get(CategoryUI).Info("hidden")
	Get(CategoryBoot).Info("visible")
	Sync()

	logs := readLogs(t, dir)
	require.Len(t, logs, 1)
	for name := range logs {
		assert.True(t, strings.HasSuffix(name, "_boot.log"), name)
	}
}

func TestLevelFilters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Initialize(config.LoggingConfig{
		Dir:       dir,
		Level:     "warn",
		Format:    "console",
		DebugMode: true,
	}))
	t.Cleanup(CloseAll)

	log := Get(CategorySession)
	log.Info("dropped")
	log.Warn("kept")
	Sync()

	for _, body := range readLogs(t, dir) {
		assert.NotContains(t, body, "dropped")
		assert.Contains(t, body, "kept")
	}
}

func TestGetReturnsCachedLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Initialize(config.LoggingConfig{Dir: dir, DebugMode: true}))
	t.Cleanup(CloseAll)

	assert.Same(t, Get(CategoryBatch), Get(CategoryBatch))
}

func TestInitialize_Errors(t *testing.T) {
	t.Cleanup(CloseAll)
	assert.Error(t, Initialize(config.LoggingConfig{Level: "loud"}))
	assert.Error(t, Initialize(config.LoggingConfig{DebugMode: true}))
}

func TestNewCLILogger(t *testing.T) {
	l, err := NewCLILogger(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
