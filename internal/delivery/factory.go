package delivery

import (
	"fmt"
	"time"

	"github.com/dhima/notification-dispatcher/pkg/config"
	"go.uber.org/zap"
)

// FromConfig builds the configured transport, wrapped with address validation.
func FromConfig(cfg config.Mail, logger *zap.Logger) (Transport, error) {
	var t Transport
	switch cfg.Transport {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required for the smtp transport")
		}
		t = NewSMTPTransport(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
			Timeout:  time.Duration(cfg.TimeoutMs) * time.Millisecond,
		})
	case "http":
		if cfg.RelayURL == "" {
			return nil, fmt.Errorf("MAIL_RELAY_URL is required for the http transport")
		}
		t = NewHTTPTransport(cfg.RelayURL, cfg.From, cfg.TimeoutMs, 0, 0, logger.Named("mail-relay"))
	case "", "log":
		t = NewLogTransport(logger)
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.Transport)
	}
	return Validating(t), nil
}
