package fakes

import (
	"context"
	"errors"
	"sync"

	"github.com/dhima/notification-dispatcher/internal/models"
)

// FakePublisher captures published delivery outcomes and can simulate failures.
type FakePublisher struct {
	mu        sync.Mutex
	Outcomes  []models.DeliveryLog
	FailAll   bool
	FailError error
}

func (p *FakePublisher) PublishDelivery(_ context.Context, entry models.DeliveryLog) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailAll {
		if p.FailError == nil {
			p.FailError = errors.New("publish failed")
		}
		return p.FailError
	}
	p.Outcomes = append(p.Outcomes, entry)
	return nil
}

// Published returns a copy of the captured outcomes.
func (p *FakePublisher) Published() []models.DeliveryLog {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.DeliveryLog(nil), p.Outcomes...)
}
