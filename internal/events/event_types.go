package events

import (
	"time"

	"github.com/spec-kit/service-orders/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated EventType = "order_created"
	EventOrderUpdated EventType = "order_updated"
)

// Actor identifies who triggered the event.
type Actor struct {
	Identity string      `json:"identity"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	OrderID   string      `json:"order_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	Sector   string               `json:"sector"`
	Priority domain.OrderPriority `json:"priority"`
	Type     domain.OrderType     `json:"type"`
}

// OrderUpdatedPayload payload.
type OrderUpdatedPayload struct {
	OldStatus     domain.OrderStatus `json:"old_status"`
	NewStatus     domain.OrderStatus `json:"new_status"`
	ChangedFields []string           `json:"changed_fields"`
}
