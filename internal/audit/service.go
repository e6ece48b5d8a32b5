// Package audit answers read-only questions about past deliveries.
package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhima/notification-dispatcher/internal/models"
	"github.com/dhima/notification-dispatcher/internal/storage"
	"go.uber.org/zap"
)

// DeliveryLogReader is the persistence required by Service.
type DeliveryLogReader interface {
	ListDeliveryLogs(ctx context.Context, query models.ListDeliveriesQuery) ([]models.DeliveryLog, int64, error)
	GetDeliveryLog(ctx context.Context, id string) (*models.DeliveryLog, error)
}

// Service queries the delivery log.
type Service struct {
	store  DeliveryLogReader
	logger *zap.Logger
}

// NewService creates an audit service.
func NewService(store DeliveryLogReader, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// QueryDeliveries retrieves delivery logs with filtering and pagination.
func (s *Service) QueryDeliveries(ctx context.Context, query models.ListDeliveriesQuery) ([]models.DeliveryLog, models.Pagination, error) {
	logs, totalCount, err := s.store.ListDeliveryLogs(ctx, query)
	if err != nil {
		s.logger.Error("failed to query delivery logs",
			zap.String("event_id", query.EventID),
			zap.String("recipient_id", query.RecipientID),
			zap.Error(err))
		return nil, models.Pagination{}, fmt.Errorf("failed to query delivery logs: %w", err)
	}

	page, limit := query.PageBounds()

	totalPages := int(totalCount) / limit
	if int(totalCount)%limit != 0 {
		totalPages++
	}

	pagination := models.Pagination{
		CurrentPage:  page,
		PageSize:     limit,
		TotalPages:   totalPages,
		TotalRecords: totalCount,
	}

	s.logger.Debug("queried delivery logs",
		zap.Int("count", len(logs)),
		zap.Int64("total", totalCount),
		zap.Int("page", page))

	return logs, pagination, nil
}

// GetDelivery retrieves a single delivery log. A missing row yields (nil, nil).
func (s *Service) GetDelivery(ctx context.Context, id string) (*models.DeliveryLog, error) {
	entry, err := s.store.GetDeliveryLog(ctx, id)
	if errors.Is(err, storage.ErrDeliveryLogNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to get delivery log", zap.String("delivery_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get delivery log: %w", err)
	}
	return entry, nil
}
