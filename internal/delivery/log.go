package delivery

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport writes messages to the logger instead of sending them. Used in development.
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport builds a log-only transport.
func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs the message and always succeeds.
func (t *LogTransport) Send(_ context.Context, to, subject, body string) error {
	t.logger.Info("notification delivered to log",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
