package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/service-orders/internal/domain"
	"github.com/spec-kit/service-orders/internal/events"
	"github.com/spec-kit/service-orders/internal/repository"
)

// CacheInvalidator drops derived data after a mutation.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// StartOrderEventsWorker subscribes the audit log, the order history trail and report cache
// invalidation to order events. reports and history may be nil.
func StartOrderEventsWorker(dispatcher events.Dispatcher, reports CacheInvalidator, history repository.OrderHistoryRepository, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, event events.Event) error {
		logger.Info("order event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.String("actor", event.Actor.Identity),
			zap.String("role", string(event.Actor.Role)),
			zap.Any("payload", event.Payload))

		var errs []error
		if history != nil {
			for _, entry := range historyEntries(event) {
				if err := history.Create(ctx, &entry); err != nil {
					errs = append(errs, err)
				}
			}
		}
		if reports != nil {
			if err := reports.InvalidateCache(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	dispatcher.Subscribe(events.EventOrderCreated, handler)
	dispatcher.Subscribe(events.EventOrderUpdated, handler)
}

func historyEntries(event events.Event) []domain.OrderHistory {
	base := domain.OrderHistory{
		OrderID:       event.OrderID,
		ChangedBy:     event.Actor.Identity,
		ChangedByRole: event.Actor.Role,
		CreatedAt:     event.Timestamp.UTC(),
	}

	switch payload := event.Payload.(type) {
	case events.OrderCreatedPayload:
		entry := base
		entry.ChangeType = domain.ChangeTypeCreated
		entry.NewValue = map[string]any{
			"sector":   payload.Sector,
			"priority": string(payload.Priority),
			"type":     string(payload.Type),
		}
		return []domain.OrderHistory{entry}

	case events.OrderUpdatedPayload:
		var entries []domain.OrderHistory
		if payload.OldStatus != payload.NewStatus {
			entry := base
			entry.ChangeType = domain.ChangeTypeStatus
			entry.OldValue = map[string]any{"status": string(payload.OldStatus)}
			entry.NewValue = map[string]any{"status": string(payload.NewStatus)}
			entries = append(entries, entry)
		}
		fields := make([]any, 0, len(payload.ChangedFields))
		for _, field := range payload.ChangedFields {
			if field != "status" {
				fields = append(fields, field)
			}
		}
		if len(fields) > 0 {
			entry := base
			entry.ChangeType = domain.ChangeTypeFields
			entry.NewValue = map[string]any{"fields": fields}
			entries = append(entries, entry)
		}
		return entries
	}
	return nil
}
