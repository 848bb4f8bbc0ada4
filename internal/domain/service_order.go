package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxDuration is the largest duration, in minutes, the stores can hold.
const MaxDuration = math.MaxInt32

// OrderStatus enumerates lifecycle states for service orders.
type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "OPEN"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusClosed     OrderStatus = "CLOSED"
)

// OrderPriority enumerates urgency levels.
type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "LOW"
	OrderPriorityMedium OrderPriority = "MEDIUM"
	OrderPriorityHigh   OrderPriority = "HIGH"
)

// OrderType separates scheduled maintenance from reactive repairs.
type OrderType string

const (
	OrderTypePreventive OrderType = "PREVENTIVE"
	OrderTypeCorrective OrderType = "CORRECTIVE"
)

// ServiceOrder is a maintenance work order.
type ServiceOrder struct {
	ID            string
	Description   string
	Sector        string
	Technician    string
	Requester     string
	Priority      OrderPriority
	Status        OrderStatus
	Type          OrderType
	Duration      int
	Notes         string
	Deadline      *time.Time
	ExecutionDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsClosed reports whether the order counts as closed for reporting.
func (o *ServiceOrder) IsClosed() bool {
	return o.Status == OrderStatusClosed
}

// OrderStats aggregates counts over the whole store.
type OrderStats struct {
	Open       int `json:"open"`
	Closed     int `json:"closed"`
	Total      int `json:"total"`
	Corrective int `json:"corrective"`
	Preventive int `json:"preventive"`
}

// Add accounts for one order.
func (s *OrderStats) Add(o *ServiceOrder) {
	if o.IsClosed() {
		s.Closed++
	} else {
		s.Open++
	}
	switch o.Type {
	case OrderTypeCorrective:
		s.Corrective++
	case OrderTypePreventive:
		s.Preventive++
	}
	s.Total = s.Open + s.Closed
}

var statusAliases = map[string]OrderStatus{
	"open":         OrderStatusOpen,
	"aberta":       OrderStatusOpen,
	"in_progress":  OrderStatusInProgress,
	"in progress":  OrderStatusInProgress,
	"em andamento": OrderStatusInProgress,
	"em_andamento": OrderStatusInProgress,
	"closed":       OrderStatusClosed,
	"finalizada":   OrderStatusClosed,
}

var priorityAliases = map[string]OrderPriority{
	"low":    OrderPriorityLow,
	"baixa":  OrderPriorityLow,
	"medium": OrderPriorityMedium,
	"média":  OrderPriorityMedium,
	"media":  OrderPriorityMedium,
	"high":   OrderPriorityHigh,
	"alta":   OrderPriorityHigh,
}

var typeAliases = map[string]OrderType{
	"preventive": OrderTypePreventive,
	"preventiva": OrderTypePreventive,
	"corrective": OrderTypeCorrective,
	"corretiva":  OrderTypeCorrective,
}

func normalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseOrderStatus accepts canonical values and the Portuguese labels used by the field app.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	if s, ok := statusAliases[normalizeLabel(raw)]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// ParseOrderPriority accepts canonical values and Portuguese labels.
func ParseOrderPriority(raw string) (OrderPriority, error) {
	if p, ok := priorityAliases[normalizeLabel(raw)]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// ParseOrderType accepts canonical values and Portuguese labels.
func ParseOrderType(raw string) (OrderType, error) {
	if t, ok := typeAliases[normalizeLabel(raw)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown order type %q", raw)
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (p *OrderPriority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOrderPriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (t *OrderType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOrderType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
