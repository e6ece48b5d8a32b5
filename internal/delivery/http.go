package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrBreakerOpen is returned while the relay circuit breaker rejects calls.
var ErrBreakerOpen = errors.New("mail relay circuit open")

// relayMessage is the JSON body posted to the mail relay.
type relayMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// HTTPTransport posts messages to an HTTP mail relay (SendGrid/Mailgun style gateway).
type HTTPTransport struct {
	url    string
	from   string
	client *http.Client
	br     *gobreaker.CircuitBreaker
}

// NewHTTPTransport builds a relay transport; non-positive values fall back to defaults.
func NewHTTPTransport(url, from string, timeoutMs, failThreshold, openForMs int, logger *zap.Logger) *HTTPTransport {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	return &HTTPTransport{
		url:    url,
		from:   from,
		client: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:     newBreaker("mail-relay", failThreshold, time.Duration(openForMs)*time.Millisecond, logger),
	}
}

// Send posts one message to the relay.
func (t *HTTPTransport) Send(ctx context.Context, to, subject, body string) error {
	_, err := t.br.Execute(func() (interface{}, error) {
		return nil, t.post(ctx, relayMessage{From: t.from, To: to, Subject: subject, Text: body})
	})
	if breakerRejected(err) {
		return fmt.Errorf("%w: %v", ErrBreakerOpen, err)
	}
	return err
}

func (t *HTTPTransport) post(ctx context.Context, msg relayMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail relay request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("mail relay rejected message to %s: status=%d", msg.To, res.StatusCode)
	}
	return nil
}
