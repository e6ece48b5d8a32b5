package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/dhima/notification-dispatcher/pkg/config"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		encoding    string
		lowest      zapcore.Level
	}{
		{name: "development debug", environment: "development", level: "debug", lowest: zapcore.DebugLevel},
		{name: "production info json", environment: "production", level: "info", encoding: "json", lowest: zapcore.InfoLevel},
		{name: "unknown level falls back to info", environment: "production", level: "loud", encoding: "json", lowest: zapcore.InfoLevel},
		{name: "warn console", environment: "production", level: "warn", encoding: "console", lowest: zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.environment, tt.level, tt.encoding)
			require.NoError(t, err)
			t.Cleanup(func() { _ = logger.Sync() })

			assert.True(t, logger.Core().Enabled(tt.lowest))
			if tt.lowest > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.lowest-1))
			}
		})
	}
}

func TestFromConfig_WhenErrorLevel_ThenWarnDisabled(t *testing.T) {
	logger, err := FromConfig(config.App{Environment: "development", LogLevel: "error", LogEncoding: "console"})

	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewDevelopmentLogger_WhenCalled_ThenDebugEnabled(t *testing.T) {
	logger, err := NewDevelopmentLogger()

	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
