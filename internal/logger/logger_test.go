package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Brownie44l1/image-classifier/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		enabled zapcore.Level
		skipped zapcore.Level
	}{
		{name: "json info", cfg: config.LogConfig{Level: "info", Format: "json"}, enabled: zapcore.InfoLevel, skipped: zapcore.DebugLevel},
		{name: "console debug", cfg: config.LogConfig{Level: "debug", Format: "console"}, enabled: zapcore.DebugLevel, skipped: zapcore.DebugLevel - 1},
		{name: "invalid level defaults to info", cfg: config.LogConfig{Level: "loud", Format: "json"}, enabled: zapcore.InfoLevel, skipped: zapcore.DebugLevel},
		{name: "error level", cfg: config.LogConfig{Level: "error", Format: "json"}, enabled: zapcore.ErrorLevel, skipped: zapcore.WarnLevel},
		{name: "stderr output", cfg: config.LogConfig{Level: "warn", Format: "console", Output: "stderr"}, enabled: zapcore.WarnLevel, skipped: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewLogger(&tt.cfg)

			require.NoError(t, err)
			require.NotNil(t, log)
			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.skipped))
		})
	}
}

func TestNewLogger_UnknownOutput(t *testing.T) {
	_, err := NewLogger(&config.LogConfig{Level: "info", Output: "syslog"})

	assert.Error(t, err)
}

func TestNewLogger_Options(t *testing.T) {
	observed, logs := observer.New(zapcore.InfoLevel)
	tee := zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, observed)
	})

	log, err := NewLogger(&config.LogConfig{Level: "info"}, tee, zap.Fields(zap.String("component", "classify")))
	require.NoError(t, err)
	log.Info("Model loaded")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Model loaded", entry.Message)
	assert.Equal(t, "classify", entry.ContextMap()["component"])
}
