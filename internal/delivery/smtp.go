package delivery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig configures SMTPTransport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPTransport delivers plain-text mail through an SMTP submission server.
type SMTPTransport struct {
	cfg  SMTPConfig
	addr string
	opts []mail.Option
}

// NewSMTPTransport builds an SMTP transport. STARTTLS is used when the server offers it and
// PLAIN auth when a username is configured.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return &SMTPTransport{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		opts: opts,
	}
}

// Send opens one SMTP session per message.
func (t *SMTPTransport) Send(ctx context.Context, to, subject, body string) error {
	msg, err := newMessage(t.cfg.From, to, subject, body)
	if err != nil {
		return err
	}

	// go-mail clients hold one connection and are not shared between goroutines
	client, err := mail.NewClient(t.cfg.Host, t.opts...)
	if err != nil {
		return fmt.Errorf("smtp client for %s: %w", t.addr, err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s via %s: %w", to, t.addr, err)
	}
	return nil
}

// newMessage builds a UTF-8 text/plain message with Date and Message-ID headers.
func newMessage(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAddress, to, err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
