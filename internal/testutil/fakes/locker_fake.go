package fakes

import (
	"context"
	"sync"
	"time"

	"github.com/dhima/notification-dispatcher/internal/lock"
)

// FakeLocker is an in-memory lock.Locker.
type FakeLocker struct {
	mu       sync.Mutex
	Held     map[string]bool
	Err      error
	Released []string
}

func NewFakeLocker() *FakeLocker {
	return &FakeLocker{Held: make(map[string]bool)}
}

func (l *FakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (lock.Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	if l.Held[key] {
		return nil, lock.ErrLocked
	}
	l.Held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.Held, key)
		l.Released = append(l.Released, key)
		return nil
	}, nil
}
