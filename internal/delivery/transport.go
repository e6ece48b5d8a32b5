// Package delivery sends rendered notifications to a single recipient address.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalidAddress is returned when a recipient address cannot be parsed.
var ErrInvalidAddress = errors.New("invalid recipient address")

// Transport sends one message to one address.
type Transport interface {
	Send(ctx context.Context, to, subject, body string) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, to, subject, body string) error

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

// ValidateAddress checks that addr is a single bare RFC 5322 address.
func ValidateAddress(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidAddress, addr, err)
	}
	if parsed.Address != addr {
		return fmt.Errorf("%w %q: display names are not accepted", ErrInvalidAddress, addr)
	}
	return nil
}

// Validating wraps next so that malformed addresses fail before any network call.
func Validating(next Transport) Transport {
	return TransportFunc(func(ctx context.Context, to, subject, body string) error {
		if err := ValidateAddress(to); err != nil {
			return err
		}
		return next.Send(ctx, to, subject, body)
	})
}
