package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/service-orders/internal/domain"
)

const dateLayout = "2006-01-02"

// Date is a calendar date; accepts YYYY-MM-DD or RFC 3339 and renders YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// Ptr returns the wrapped time, nil for a nil date.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// DateFrom wraps an optional time for responses.
func DateFrom(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

// Minutes is a duration in whole minutes; accepts numbers or numeric strings, truncating fractions.
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("duration must be a number")
		}
		num = json.Number(strings.TrimSpace(raw))
	}
	if num == "" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(num), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid duration %q", string(num))
	}
	if f > domain.MaxDuration || f < math.MinInt32 {
		return fmt.Errorf("duration %q out of range", string(num))
	}
	*m = Minutes(math.Trunc(f))
	return nil
}

// CreateOrderRequest payload.
type CreateOrderRequest struct {
	Description   string               `json:"description" validate:"required,max=2000"`
	Sector        string               `json:"sector" validate:"max=255"`
	Technician    string               `json:"technician" validate:"max=255"`
	Requester     string               `json:"requester" validate:"max=255"`
	Priority      domain.OrderPriority `json:"priority"`
	Status        domain.OrderStatus   `json:"status"`
	Type          domain.OrderType     `json:"type"`
	Duration      *Minutes             `json:"duration" validate:"omitempty,min=0,max=2147483647"`
	Notes         string               `json:"notes"`
	Deadline      *Date                `json:"deadline"`
	ExecutionDate *Date                `json:"executionDate"`
}

// UpdateOrderRequest carries only the keys the caller sent.
type UpdateOrderRequest struct {
	Description   domain.Optional[string]               `json:"description"`
	Sector        domain.Optional[string]               `json:"sector"`
	Technician    domain.Optional[string]               `json:"technician"`
	Requester     domain.Optional[string]               `json:"requester"`
	Priority      domain.Optional[domain.OrderPriority] `json:"priority"`
	Status        domain.Optional[domain.OrderStatus]   `json:"status"`
	Type          domain.Optional[domain.OrderType]     `json:"type"`
	Duration      domain.Optional[Minutes]              `json:"duration"`
	Notes         domain.Optional[string]               `json:"notes"`
	Deadline      domain.Optional[*Date]                `json:"deadline"`
	ExecutionDate domain.Optional[*Date]                `json:"executionDate"`
}

// Patch converts the request into a domain patch.
func (r UpdateOrderRequest) Patch() domain.OrderPatch {
	patch := domain.OrderPatch{
		Description: r.Description,
		Sector:      r.Sector,
		Technician:  r.Technician,
		Requester:   r.Requester,
		Priority:    r.Priority,
		Status:      r.Status,
		Type:        r.Type,
		Notes:       r.Notes,
	}
	if r.Duration.Set {
		patch.Duration = domain.Optional[int]{Set: true, Null: r.Duration.Null, Value: int(r.Duration.Value)}
	}
	if r.Deadline.Set {
		patch.Deadline = domain.Some(r.Deadline.Value.Ptr())
	}
	if r.ExecutionDate.Set {
		patch.ExecutionDate = domain.Some(r.ExecutionDate.Value.Ptr())
	}
	return patch
}

// OrderResponse is the wire form of a service order.
type OrderResponse struct {
	ID            string               `json:"id"`
	Description   string               `json:"description"`
	Sector        string               `json:"sector"`
	Technician    string               `json:"technician"`
	Requester     string               `json:"requester"`
	Priority      domain.OrderPriority `json:"priority"`
	Status        domain.OrderStatus   `json:"status"`
	Type          domain.OrderType     `json:"type"`
	Duration      int                  `json:"duration"`
	Notes         string               `json:"notes"`
	Deadline      *Date                `json:"deadline"`
	ExecutionDate *Date                `json:"executionDate"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(order *domain.ServiceOrder) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		Description:   order.Description,
		Sector:        order.Sector,
		Technician:    order.Technician,
		Requester:     order.Requester,
		Priority:      order.Priority,
		Status:        order.Status,
		Type:          order.Type,
		Duration:      order.Duration,
		Notes:         order.Notes,
		Deadline:      DateFrom(order.Deadline),
		ExecutionDate: DateFrom(order.ExecutionDate),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// OrderHistoryResponse is one audit trail entry.
type OrderHistoryResponse struct {
	ID            string                 `json:"id"`
	OrderID       string                 `json:"orderId"`
	ChangedBy     string                 `json:"changedBy"`
	ChangedByRole domain.Role            `json:"changedByRole"`
	ChangeType    domain.OrderChangeType `json:"changeType"`
	OldValue      map[string]any         `json:"oldValue,omitempty"`
	NewValue      map[string]any         `json:"newValue,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// NewOrderHistoryResponse maps a history entry.
func NewOrderHistoryResponse(entry domain.OrderHistory) OrderHistoryResponse {
	return OrderHistoryResponse{
		ID:            entry.ID,
		OrderID:       entry.OrderID,
		ChangedBy:     entry.ChangedBy,
		ChangedByRole: entry.ChangedByRole,
		ChangeType:    entry.ChangeType,
		OldValue:      entry.OldValue,
		NewValue:      entry.NewValue,
		CreatedAt:     entry.CreatedAt,
	}
}
