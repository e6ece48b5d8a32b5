// Package logging builds the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dhima/notification-dispatcher/pkg/config"
)

// ServiceName is attached to every log entry.
const ServiceName = "notification-dispatcher"

// NewLogger creates a logger for environment ("development" or "production").
// Unknown levels fall back to info; encoding is "json" or "console" and defaults per environment.
func NewLogger(environment, logLevel, encoding string) (*zap.Logger, error) {
	var cfg zap.Config

	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		// Enable sampling to prevent log storms in production
		cfg.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	}
	if encoding == "json" || encoding == "console" {
		cfg.Encoding = encoding
		if encoding == "json" {
			cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		}
	}

	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", ServiceName)), nil
}

// FromConfig creates the logger described by cfg.
func FromConfig(cfg config.App) (*zap.Logger, error) {
	return NewLogger(cfg.Environment, cfg.LogLevel, cfg.LogEncoding)
}

// NewDevelopmentLogger creates a logger optimized for development.
func NewDevelopmentLogger() (*zap.Logger, error) {
	return NewLogger("development", "debug", "console")
}
