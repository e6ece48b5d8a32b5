// Package events publishes delivery outcomes to Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DeliveryOutcome is the message value written for every persisted delivery log row.
type DeliveryOutcome struct {
	DeliveryID   string    `json:"delivery_id"`
	RunID        string    `json:"run_id"`
	EventID      string    `json:"event_id"`
	RecipientID  string    `json:"recipient_id"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

// Publisher writes delivery outcomes to a Kafka topic, keyed by event id.
type Publisher struct {
	writer    *kafka.Writer
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewPublisher builds a publisher that waits for all in-sync replicas.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			WriteTimeout: 10 * time.Second,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger,
	}
}

// PublishDelivery writes one outcome. Failures are returned to the caller, which treats
// them as non-fatal.
func (p *Publisher) PublishDelivery(ctx context.Context, entry models.DeliveryLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := newMessage(entry)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish delivery outcome",
			zap.String("delivery_id", entry.ID),
			zap.String("topic", p.writer.Topic),
			zap.Error(err))
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	p.logger.Debug("delivery outcome published",
		zap.String("delivery_id", entry.ID),
		zap.String("event_id", entry.EventID))
	return nil
}

// Close flushes pending messages. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.writer.Close()
	})
	return p.closeErr
}

func newMessage(entry models.DeliveryLog) (kafka.Message, error) {
	outcome := DeliveryOutcome{
		DeliveryID:  entry.ID,
		RunID:       entry.RunID,
		EventID:     entry.EventID,
		RecipientID: entry.RecipientID,
		Status:      string(entry.Status),
		SentAt:      entry.SentAt,
	}
	if entry.ErrorMessage != nil {
		outcome.ErrorMessage = *entry.ErrorMessage
	}
	value, err := json.Marshal(outcome)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal delivery outcome: %w", err)
	}
	return kafka.Message{
		Key:   []byte(entry.EventID),
		Value: value,
		Time:  entry.SentAt,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(entry.RunID)},
		},
	}, nil
}
