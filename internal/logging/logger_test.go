package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLoggingState(t *testing.T) {
	t.Helper()
	loggersMu.Lock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	loggersMu.Unlock()

	configMu.Lock()
	config = loggingConfig{}
	configLoaded = false
	configMu.Unlock()

	logsDir = ""
	workspace = ""
}

func writeConfig(t *testing.T, ws string, cfg loggingConfig) {
	t.Helper()
	dir := filepath.Join(ws, ".cadigraph")
	require.NoError(t, os.MkdirAll(dir, 0755))
	data := []byte(`{"logging":{"debug_mode":` + boolStr(cfg.DebugMode) + `,"level":"` + cfg.Level + `"}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), data, 0644))
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func TestInitializeProductionModeNoLogFiles(t *testing.T) {
	resetLoggingState(t)
	ws := t.TempDir()

	require.NoError(t, Initialize(ws))
	assert.False(t, IsDebugMode())

	_, err := os.Stat(filepath.Join(ws, ".cadigraph", "logs"))
	assert.True(t, os.IsNotExist(err), "logs directory should not be created in production mode")
}

func TestInitializeDebugModeCreatesLogFile(t *testing.T) {
	resetLoggingState(t)
	ws := t.TempDir()
	writeConfig(t, ws, loggingConfig{DebugMode: true, Level: "debug"})

	require.NoError(t, Initialize(ws))
	assert.True(t, IsDebugMode())

	Get(CategoryAtomizer).Info("test message %d", 1)

	entries, err := os.ReadDir(filepath.Join(ws, ".cadigraph", "logs"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestIsCategoryEnabledDefaultsTrue(t *testing.T) {
	resetLoggingState(t)
	config.DebugMode = true
	assert.True(t, IsCategoryEnabled(CategoryGraph))
}

func TestIsCategoryEnabledRespectsExplicitFalse(t *testing.T) {
	resetLoggingState(t)
	config.DebugMode = true
	config.Categories = map[string]bool{"graph": false}
	assert.False(t, IsCategoryEnabled(CategoryGraph))
	assert.True(t, IsCategoryEnabled(CategoryAtomizer))
}

func TestTimerStopReturnsElapsed(t *testing.T) {
	resetLoggingState(t)
	timer := StartTimer(CategoryRehydration, "create_view")
	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
}

func TestRequestLoggerFormatsFields(t *testing.T) {
	resetLoggingState(t)
	config.DebugMode = true
	rl := WithRequestID(CategoryCLI, "req-1").WithField("chunk_id", "chunk:sha256:abc")
	msg := rl.formatMsg("assembling view for %s", "chunk:sha256:abc")
	assert.Contains(t, msg, "req:req-1")
	assert.Contains(t, msg, "chunk:sha256:abc")
}
