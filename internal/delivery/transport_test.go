package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dhima/notification-dispatcher/pkg/config"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "plain address", addr: "john@example.com"},
		{name: "plus addressing", addr: "jane+events@example.co.uk"},
		{name: "missing at sign", addr: "invalid-email-format", wantErr: true},
		{name: "empty", addr: "", wantErr: true},
		{name: "display name", addr: "John <john@example.com>", wantErr: true},
		{name: "two addresses", addr: "a@example.com, b@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidating_RejectsBeforeCallingNext(t *testing.T) {
	var calls int
	next := TransportFunc(func(ctx context.Context, to, subject, body string) error {
		calls++
		return nil
	})
	tr := Validating(next)

	err := tr.Send(context.Background(), "invalid-email-format", "s", "b")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Equal(t, 0, calls)

	require.NoError(t, tr.Send(context.Background(), "john@example.com", "s", "b"))
	assert.Equal(t, 1, calls)
}

func failing() (interface{}, error) { return nil, errors.New("relay down") }

func TestBreaker_OpensAfterThresholdAndProbesAfterCooldown(t *testing.T) {
	b := newBreaker("test", 2, 50*time.Millisecond, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := b.Execute(failing)
		require.Error(t, err)
	}

	// open
	_, err := b.Execute(failing)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	// cooldown elapsed: exactly one probe allowed
	require.Eventually(t, func() bool { return b.State() == gobreaker.StateHalfOpen }, time.Second, 5*time.Millisecond)
	started, finish := make(chan struct{}), make(chan struct{})
	probeDone := make(chan error, 1)
	go func() {
		_, err := b.Execute(func() (interface{}, error) {
			close(started)
			<-finish
			return nil, nil
		})
		probeDone <- err
	}()
	<-started

	_, err = b.Execute(failing)
	assert.ErrorIs(t, err, gobreaker.ErrTooManyRequests)

	close(finish)
	require.NoError(t, <-probeDone)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b := newBreaker("test", 1, 50*time.Millisecond, zap.NewNop())

	_, _ = b.Execute(failing)
	require.Eventually(t, func() bool { return b.State() == gobreaker.StateHalfOpen }, time.Second, 5*time.Millisecond)
	_, err := b.Execute(failing)
	require.Error(t, err)

	assert.Equal(t, gobreaker.StateOpen, b.State())
	_, err = b.Execute(failing)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreaker_WhenCallerCancels_ThenStaysClosed(t *testing.T) {
	b := newBreaker("test", 1, time.Minute, zap.NewNop())

	_, err := b.Execute(func() (interface{}, error) { return nil, context.Canceled })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestHTTPTransport_Send_PostsJSON(t *testing.T) {
	var got relayMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, "noreply@example.com", 1000, 3, 1000, zap.NewNop())
	err := tr.Send(context.Background(), "john@example.com", "Event Reminder", "Happy Birthday, John Doe!")

	require.NoError(t, err)
	assert.Equal(t, relayMessage{
		From:    "noreply@example.com",
		To:      "john@example.com",
		Subject: "Event Reminder",
		Text:    "Happy Birthday, John Doe!",
	}, got)
}

func TestHTTPTransport_Send_Non2xxOpensBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, "noreply@example.com", 1000, 2, 60000, zap.NewNop())
	for i := 0; i < 2; i++ {
		err := tr.Send(context.Background(), "john@example.com", "s", "b")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=502")
	}

	err := tr.Send(context.Background(), "john@example.com", "s", "b")
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestSMTPTransport_Send_DialFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	tr := NewSMTPTransport(SMTPConfig{Host: "127.0.0.1", Port: port, From: "noreply@example.com", Timeout: time.Second})
	err = tr.Send(context.Background(), "john@example.com", "s", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send to john@example.com")
}

func renderMessage(t *testing.T, subject, body string) string {
	t.Helper()
	msg, err := newMessage("noreply@example.com", "john@example.com", subject, body)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestNewMessage_WritesHeaders(t *testing.T) {
	out := renderMessage(t, "Event Reminder", "Happy Birthday, John Doe!")

	assert.Contains(t, out, "From: <noreply@example.com>\r\n")
	assert.Contains(t, out, "To: <john@example.com>\r\n")
	assert.Contains(t, out, "Subject: Event Reminder\r\n")
	assert.Contains(t, out, "Date: ")
	assert.Contains(t, out, "Message-ID: <")
	assert.Contains(t, out, "text/plain")
}

func TestNewMessage_LineEndings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "LF body", body: "line1\nline2"},
		{name: "CRLF body", body: "line1\r\nline2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderMessage(t, "Event Reminder", tt.body)

			assert.Contains(t, out, "line1\r\nline2")
			assert.NotContains(t, out, "\r\r\n")
		})
	}
}

func TestNewMessage_EncodesNonASCIISubject(t *testing.T) {
	out := renderMessage(t, "Joyeux anniversaire, Zoé", "b")

	assert.Contains(t, out, "Subject: =?UTF-8?")
	assert.NotContains(t, out, "Zoé")
}

func TestNewMessage_RejectsBadRecipient(t *testing.T) {
	_, err := newMessage("noreply@example.com", "not an address", "s", "b")

	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestFromConfig(t *testing.T) {
	logger := zap.NewNop()

	tr, err := FromConfig(config.Mail{Transport: "log"}, logger)
	require.NoError(t, err)
	assert.NoError(t, tr.Send(context.Background(), "john@example.com", "s", "b"))
	assert.ErrorIs(t, tr.Send(context.Background(), "invalid-email-format", "s", "b"), ErrInvalidAddress)

	_, err = FromConfig(config.Mail{Transport: "smtp"}, logger)
	assert.Error(t, err)

	_, err = FromConfig(config.Mail{Transport: "http"}, logger)
	assert.Error(t, err)

	_, err = FromConfig(config.Mail{Transport: "pigeon"}, logger)
	assert.Error(t, err)
}
