package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-orders/internal/domain"
)

func newOrder(description string, status domain.OrderStatus, typ domain.OrderType) *domain.ServiceOrder {
	return &domain.ServiceOrder{
		Description: description,
		Sector:      "Incubatório 1",
		Priority:    domain.OrderPriorityMedium,
		Status:      status,
		Type:        typ,
	}
}

func TestMemoryOrderRepository_CreateAssignsUniqueIDs(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		order := newOrder(fmt.Sprintf("order %d", i), domain.OrderStatusOpen, domain.OrderTypeCorrective)
		require.NoError(t, repo.Create(ctx, order))
		require.NotEmpty(t, order.ID)
		_, dup := seen[order.ID]
		require.False(t, dup, "duplicate id %s", order.ID)
		seen[order.ID] = struct{}{}
	}
}

func TestMemoryOrderRepository_ListKeepsInsertionOrder(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	for _, desc := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, newOrder(desc, domain.OrderStatusOpen, domain.OrderTypeCorrective)))
	}

	orders, err := repo.List(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "c", orders[0].Description)
	assert.Equal(t, "a", orders[1].Description)
	assert.Equal(t, "b", orders[2].Description)
}

func TestMemoryOrderRepository_ListFilter(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newOrder("open corrective", domain.OrderStatusOpen, domain.OrderTypeCorrective)))
	require.NoError(t, repo.Create(ctx, newOrder("closed preventive", domain.OrderStatusClosed, domain.OrderTypePreventive)))
	other := newOrder("other sector", domain.OrderStatusOpen, domain.OrderTypePreventive)
	other.Sector = "Expedição"
	require.NoError(t, repo.Create(ctx, other))

	orders, err := repo.List(ctx, OrderFilter{Statuses: []domain.OrderStatus{domain.OrderStatusOpen}})
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = repo.List(ctx, OrderFilter{Types: []domain.OrderType{domain.OrderTypePreventive}})
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	sector := "expedição"
	orders, err = repo.List(ctx, OrderFilter{Sector: &sector})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "other sector", orders[0].Description)
}

func TestMemoryOrderRepository_GetByIDNotFound(t *testing.T) {
	repo := NewMemoryOrderRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOrderRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	deadline := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	order := newOrder("copy me", domain.OrderStatusOpen, domain.OrderTypeCorrective)
	order.Deadline = &deadline
	require.NoError(t, repo.Create(ctx, order))

	order.Description = "mutated by caller"
	*order.Deadline = deadline.AddDate(1, 0, 0)

	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy me", stored.Description)
	assert.True(t, deadline.Equal(*stored.Deadline))
}

func TestMemoryOrderRepository_Update(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newOrder("update me", domain.OrderStatusOpen, domain.OrderTypeCorrective)
	require.NoError(t, repo.Create(ctx, order))

	updated, err := repo.Update(ctx, order.ID, func(o *domain.ServiceOrder) error {
		o.Status = domain.OrderStatusClosed
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusClosed, updated.Status)

	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusClosed, stored.Status)
}

func TestMemoryOrderRepository_UpdateErrorLeavesRecord(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newOrder("keep me", domain.OrderStatusOpen, domain.OrderTypeCorrective)
	require.NoError(t, repo.Create(ctx, order))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, order.ID, func(o *domain.ServiceOrder) error {
		o.Description = "half-applied"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", stored.Description)

	_, err = repo.Update(ctx, "missing", func(*domain.ServiceOrder) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOrderRepository_ConcurrentUpdatesSerialize(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newOrder("counter", domain.OrderStatusOpen, domain.OrderTypeCorrective)
	require.NoError(t, repo.Create(ctx, order))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, order.ID, func(o *domain.ServiceOrder) error {
				o.Duration++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.Duration)
}

func TestMemoryOrderRepository_Stats(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStats{}, stats)

	require.NoError(t, repo.Create(ctx, newOrder("a", domain.OrderStatusOpen, domain.OrderTypeCorrective)))
	require.NoError(t, repo.Create(ctx, newOrder("b", domain.OrderStatusInProgress, domain.OrderTypePreventive)))
	require.NoError(t, repo.Create(ctx, newOrder("c", domain.OrderStatusClosed, domain.OrderTypeCorrective)))

	stats, err = repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStats{Open: 2, Closed: 1, Total: 3, Corrective: 2, Preventive: 1}, stats)
}
