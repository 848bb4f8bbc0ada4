package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-orders/internal/domain"
)

// OrderHistoryRepository stores audit entries.
type OrderHistoryRepository interface {
	Create(ctx context.Context, history *domain.OrderHistory) error
	// ListByOrder returns entries oldest first.
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderHistory, error)
}

type orderHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewOrderHistoryRepository builds repository.
func NewOrderHistoryRepository(pool *pgxpool.Pool) OrderHistoryRepository {
	return &orderHistoryRepository{pool: pool}
}

func (r *orderHistoryRepository) Create(ctx context.Context, history *domain.OrderHistory) error {
	stampHistory(history)
	const query = `
        INSERT INTO order_history (id, order_id, changed_by, changed_by_role, change_type, old_value, new_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		history.ID,
		history.OrderID,
		history.ChangedBy,
		history.ChangedByRole,
		history.ChangeType,
		history.OldValue,
		history.NewValue,
		history.CreatedAt,
	)
	return err
}

func (r *orderHistoryRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	result := []domain.OrderHistory{}
	if _, err := uuid.Parse(orderID); err != nil {
		return result, nil
	}
	const query = `
        SELECT id, order_id, changed_by, changed_by_role, change_type, old_value, new_value, created_at
        FROM order_history WHERE order_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var history domain.OrderHistory
		if err := rows.Scan(
			&history.ID,
			&history.OrderID,
			&history.ChangedBy,
			&history.ChangedByRole,
			&history.ChangeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}

type memoryOrderHistoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]domain.OrderHistory
}

// NewMemoryOrderHistoryRepository keeps the audit trail in process memory.
func NewMemoryOrderHistoryRepository() OrderHistoryRepository {
	return &memoryOrderHistoryRepository{entries: make(map[string][]domain.OrderHistory)}
}

func (r *memoryOrderHistoryRepository) Create(_ context.Context, history *domain.OrderHistory) error {
	stampHistory(history)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[history.OrderID] = append(r.entries[history.OrderID], *history)
	return nil
}

func (r *memoryOrderHistoryRepository) ListByOrder(_ context.Context, orderID string) ([]domain.OrderHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.OrderHistory{}, r.entries[orderID]...), nil
}

func stampHistory(history *domain.OrderHistory) {
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now().UTC()
	}
}
