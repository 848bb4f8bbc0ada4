package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-orders/internal/domain"
)

// ErrNotFound is returned when no service order matches the id.
var ErrNotFound = errors.New("service order not found")

// OrderFilter narrows listings. Zero value lists everything.
type OrderFilter struct {
	Statuses   []domain.OrderStatus
	Types      []domain.OrderType
	Priorities []domain.OrderPriority
	Sector     *string
}

// Matches applies the filter to a single order.
func (f OrderFilter) Matches(o *domain.ServiceOrder) bool {
	if len(f.Statuses) > 0 && !contains(f.Statuses, o.Status) {
		return false
	}
	if len(f.Types) > 0 && !contains(f.Types, o.Type) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, o.Priority) {
		return false
	}
	if f.Sector != nil && !strings.EqualFold(strings.TrimSpace(*f.Sector), o.Sector) {
		return false
	}
	return true
}

func contains[T comparable](set []T, v T) bool {
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

// UpdateFunc mutates the stored order in place during an update.
type UpdateFunc func(order *domain.ServiceOrder) error

// OrderRepository encapsulates service order persistence.
type OrderRepository interface {
	// Create stores the order, assigning a fresh id when it has none.
	Create(ctx context.Context, order *domain.ServiceOrder) error
	// List returns orders in insertion order.
	List(ctx context.Context, filter OrderFilter) ([]domain.ServiceOrder, error)
	GetByID(ctx context.Context, id string) (*domain.ServiceOrder, error)
	// Update runs fn against the current record while holding it exclusively, then persists the result.
	Update(ctx context.Context, id string, fn UpdateFunc) (*domain.ServiceOrder, error)
	Stats(ctx context.Context) (domain.OrderStats, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, description, sector, technician, requester, priority, status, type,
               duration, notes, deadline, execution_date, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.ServiceOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO service_orders (id, description, sector, technician, requester, priority, status, type,
            duration, notes, deadline, execution_date, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.Description,
		order.Sector,
		order.Technician,
		order.Requester,
		order.Priority,
		order.Status,
		order.Type,
		order.Duration,
		order.Notes,
		order.Deadline,
		order.ExecutionDate,
		order.CreatedAt,
		order.UpdatedAt,
	)
	return err
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.ServiceOrder, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, typ := range filter.Types {
			args = append(args, typ)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Sector != nil {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.Sector)))
		clauses = append(clauses, fmt.Sprintf("LOWER(sector) = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM service_orders WHERE %s ORDER BY seq ASC`,
		orderColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.ServiceOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE id=$1`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return order, err
}

func (r *orderRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*domain.ServiceOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var updated *domain.ServiceOrder
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		selectQuery := `SELECT ` + orderColumns + ` FROM service_orders WHERE id=$1 FOR UPDATE`
		order, err := scanOrder(tx.QueryRow(ctx, selectQuery, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(order); err != nil {
			return err
		}

		const updateQuery = `
            UPDATE service_orders SET description=$1, sector=$2, technician=$3, requester=$4, priority=$5,
                status=$6, type=$7, duration=$8, notes=$9, deadline=$10, execution_date=$11, updated_at=$12
            WHERE id=$13`
		if _, err := tx.Exec(ctx, updateQuery,
			order.Description,
			order.Sector,
			order.Technician,
			order.Requester,
			order.Priority,
			order.Status,
			order.Type,
			order.Duration,
			order.Notes,
			order.Deadline,
			order.ExecutionDate,
			order.UpdatedAt,
			id,
		); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) Stats(ctx context.Context) (domain.OrderStats, error) {
	const query = `
        SELECT COUNT(*) FILTER (WHERE status <> $1),
               COUNT(*) FILTER (WHERE status = $1),
               COUNT(*) FILTER (WHERE type = $2),
               COUNT(*) FILTER (WHERE type = $3)
        FROM service_orders`
	var stats domain.OrderStats
	if err := r.pool.QueryRow(ctx, query,
		domain.OrderStatusClosed,
		domain.OrderTypeCorrective,
		domain.OrderTypePreventive,
	).Scan(&stats.Open, &stats.Closed, &stats.Corrective, &stats.Preventive); err != nil {
		return domain.OrderStats{}, err
	}
	stats.Total = stats.Open + stats.Closed
	return stats, nil
}

func scanOrder(row pgx.Row) (*domain.ServiceOrder, error) {
	var order domain.ServiceOrder
	if err := row.Scan(
		&order.ID,
		&order.Description,
		&order.Sector,
		&order.Technician,
		&order.Requester,
		&order.Priority,
		&order.Status,
		&order.Type,
		&order.Duration,
		&order.Notes,
		&order.Deadline,
		&order.ExecutionDate,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

func scanOrders(rows pgx.Rows) ([]domain.ServiceOrder, error) {
	result := []domain.ServiceOrder{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	return result, rows.Err()
}
