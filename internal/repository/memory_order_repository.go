package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/service-orders/internal/domain"
)

type memoryOrderRepository struct {
	mu     sync.RWMutex
	orders []*domain.ServiceOrder
	index  map[string]int
}

// NewMemoryOrderRepository keeps orders in process memory, in insertion order.
func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepository{index: make(map[string]int)}
}

func (r *memoryOrderRepository) Create(_ context.Context, order *domain.ServiceOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	for {
		if _, taken := r.index[order.ID]; !taken {
			break
		}
		order.ID = uuid.NewString()
	}
	r.index[order.ID] = len(r.orders)
	r.orders = append(r.orders, cloneOrder(order))
	return nil
}

func (r *memoryOrderRepository) List(_ context.Context, filter OrderFilter) ([]domain.ServiceOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.ServiceOrder, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Matches(order) {
			result = append(result, *cloneOrder(order))
		}
	}
	return result, nil
}

func (r *memoryOrderRepository) GetByID(_ context.Context, id string) (*domain.ServiceOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(r.orders[pos]), nil
}

func (r *memoryOrderRepository) Update(_ context.Context, id string, fn UpdateFunc) (*domain.ServiceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := cloneOrder(r.orders[pos])
	if err := fn(working); err != nil {
		return nil, err
	}
	r.orders[pos] = working
	return cloneOrder(working), nil
}

func (r *memoryOrderRepository) Stats(_ context.Context) (domain.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.OrderStats
	for _, order := range r.orders {
		stats.Add(order)
	}
	return stats, nil
}

func cloneOrder(o *domain.ServiceOrder) *domain.ServiceOrder {
	c := *o
	c.Deadline = cloneTime(o.Deadline)
	c.ExecutionDate = cloneTime(o.ExecutionDate)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
