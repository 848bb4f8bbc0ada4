package domain

import "time"

// OrderChangeType captures what a history entry records.
type OrderChangeType string

const (
	ChangeTypeCreated OrderChangeType = "CREATED"
	ChangeTypeStatus  OrderChangeType = "STATUS_CHANGE"
	ChangeTypeFields  OrderChangeType = "FIELDS_CHANGE"
)

// OrderHistory is an immutable audit trail entry for a service order.
type OrderHistory struct {
	ID            string
	OrderID       string
	ChangedBy     string
	ChangedByRole Role
	ChangeType    OrderChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
