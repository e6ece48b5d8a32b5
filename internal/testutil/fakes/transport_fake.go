package fakes

import (
	"context"
	"sync"

	"github.com/dhima/notification-dispatcher/internal/delivery"
)

// SentMessage is one message accepted by FakeTransport.
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// FakeTransport records sends. Invalid addresses fail like the production transports;
// FailFor and PanicFor inject failures per address.
type FakeTransport struct {
	mu       sync.Mutex
	Sent     []SentMessage
	FailFor  map[string]error
	PanicFor map[string]bool
	// OnSend, if set, runs before each send outside the lock.
	OnSend func(ctx context.Context, to string)
	calls  int
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{FailFor: make(map[string]error), PanicFor: make(map[string]bool)}
}

func (t *FakeTransport) Send(ctx context.Context, to, subject, body string) error {
	if t.OnSend != nil {
		t.OnSend(ctx, to)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.PanicFor[to] {
		panic("transport exploded")
	}
	if err := delivery.ValidateAddress(to); err != nil {
		return err
	}
	if err, ok := t.FailFor[to]; ok {
		return err
	}
	t.Sent = append(t.Sent, SentMessage{To: to, Subject: subject, Body: body})
	return nil
}

// Calls returns how many sends were attempted.
func (t *FakeTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Messages returns a copy of the accepted messages.
func (t *FakeTransport) Messages() []SentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]SentMessage(nil), t.Sent...)
}
