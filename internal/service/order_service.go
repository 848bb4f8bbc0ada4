package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-orders/internal/domain"
	"github.com/spec-kit/service-orders/internal/events"
	"github.com/spec-kit/service-orders/internal/observability"
	"github.com/spec-kit/service-orders/internal/repository"
	apperrors "github.com/spec-kit/service-orders/pkg/util/errorutil"
)

// OrderService coordinates service order workflows.
type OrderService struct {
	orders     repository.OrderRepository
	history    repository.OrderHistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	HistoryRepo repository.OrderHistoryRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// OrderCreateInput describes order creation payload. Zero values take defaults.
type OrderCreateInput struct {
	Description   string
	Sector        string
	Technician    string
	Requester     string
	Priority      domain.OrderPriority
	Status        domain.OrderStatus
	Type          domain.OrderType
	Duration      int
	Notes         string
	Deadline      *time.Time
	ExecutionDate *time.Time
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        clock,
	}
}

// CreateOrder validates, applies defaults and stores a new order.
func (s *OrderService) CreateOrder(ctx context.Context, actor events.Actor, input OrderCreateInput) (*domain.ServiceOrder, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description required", map[string]any{"description": "required"})
	}
	if err := validateDuration(input.Duration); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &domain.ServiceOrder{
		Description:   description,
		Sector:        strings.TrimSpace(input.Sector),
		Technician:    strings.TrimSpace(input.Technician),
		Requester:     strings.TrimSpace(input.Requester),
		Priority:      input.Priority,
		Status:        input.Status,
		Type:          input.Type,
		Duration:      input.Duration,
		Notes:         input.Notes,
		Deadline:      input.Deadline,
		ExecutionDate: input.ExecutionDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.Priority == "" {
		order.Priority = domain.OrderPriorityMedium
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusOpen
	}
	if order.Type == "" {
		order.Type = domain.OrderTypeCorrective
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	s.metrics.RecordOrderMutation("create")
	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderCreated,
		OrderID: order.ID,
		Actor:   actor,
		Payload: events.OrderCreatedPayload{
			Sector:   order.Sector,
			Priority: order.Priority,
			Type:     order.Type,
		},
	})
	return order, nil
}

// ListOrders returns orders in insertion order.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.ServiceOrder, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return orders, nil
}

// GetOrder fetches a single order.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.ServiceOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}
	return order, nil
}

// UpdateOrder merges the supplied keys over the stored order.
func (s *OrderService) UpdateOrder(ctx context.Context, actor events.Actor, id string, patch domain.OrderPatch) (*domain.ServiceOrder, error) {
	if patch.Description.Set {
		if patch.Description.Null || strings.TrimSpace(patch.Description.Value) == "" {
			return nil, apperrors.NewValidationError("description must not be empty", map[string]any{"description": "required"})
		}
		patch.Description.Value = strings.TrimSpace(patch.Description.Value)
	}
	if patch.Duration.Set {
		if err := validateDuration(patch.Duration.Value); err != nil {
			return nil, err
		}
	}
	trimOptional(&patch.Sector)
	trimOptional(&patch.Technician)
	trimOptional(&patch.Requester)

	var oldStatus domain.OrderStatus
	updated, err := s.orders.Update(ctx, id, func(order *domain.ServiceOrder) error {
		oldStatus = order.Status
		patch.Apply(order)
		order.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}

	s.metrics.RecordOrderMutation("update")
	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderUpdated,
		OrderID: updated.ID,
		Actor:   actor,
		Payload: events.OrderUpdatedPayload{
			OldStatus:     oldStatus,
			NewStatus:     updated.Status,
			ChangedFields: patchedFields(patch),
		},
	})
	return updated, nil
}

// ListHistory returns the audit trail of an order, oldest entry first.
func (s *OrderService) ListHistory(ctx context.Context, id string) ([]domain.OrderHistory, error) {
	if _, err := s.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.OrderHistory{}, nil
	}
	entries, err := s.history.ListByOrder(ctx, id)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return entries, nil
}

func validateDuration(minutes int) error {
	if minutes < 0 {
		return apperrors.NewValidationError("duration must not be negative", map[string]any{"duration": "min"})
	}
	if minutes > domain.MaxDuration {
		return apperrors.NewValidationError("duration too large", map[string]any{"duration": "max"})
	}
	return nil
}

func trimOptional(field *domain.Optional[string]) {
	if field.Set && !field.Null {
		field.Value = strings.TrimSpace(field.Value)
	}
}

func (s *OrderService) mapStoreError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("service order", map[string]any{"id": id})
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return apperrors.NewStoreUnavailable(err)
}

func (s *OrderService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}

func patchedFields(p domain.OrderPatch) []string {
	fields := []string{}
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.Description.Set, "description")
	add(p.Sector.Set, "sector")
	add(p.Technician.Set, "technician")
	add(p.Requester.Set, "requester")
	add(p.Priority.Set, "priority")
	add(p.Status.Set, "status")
	add(p.Type.Set, "type")
	add(p.Duration.Set, "duration")
	add(p.Notes.Set, "notes")
	add(p.Deadline.Set, "deadline")
	add(p.ExecutionDate.Set, "execution_date")
	return fields
}
