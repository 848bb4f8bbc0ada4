package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional tracks whether a JSON key was present, so falsy values still count as updates.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// UnmarshalJSON is invoked only for keys present in the payload, including explicit nulls.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// OrderPatch carries the keys supplied to an update. Absent keys keep their stored value.
type OrderPatch struct {
	Description   Optional[string]
	Sector        Optional[string]
	Technician    Optional[string]
	Requester     Optional[string]
	Priority      Optional[OrderPriority]
	Status        Optional[OrderStatus]
	Type          Optional[OrderType]
	Duration      Optional[int]
	Notes         Optional[string]
	Deadline      Optional[*time.Time]
	ExecutionDate Optional[*time.Time]
}

// Apply merges the patch over the order. Null on a non-nullable field is ignored.
func (p OrderPatch) Apply(o *ServiceOrder) {
	applyValue(&o.Description, p.Description)
	applyValue(&o.Sector, p.Sector)
	applyValue(&o.Technician, p.Technician)
	applyValue(&o.Requester, p.Requester)
	applyValue(&o.Priority, p.Priority)
	applyValue(&o.Status, p.Status)
	applyValue(&o.Type, p.Type)
	applyValue(&o.Duration, p.Duration)
	applyValue(&o.Notes, p.Notes)
	if p.Deadline.Set {
		o.Deadline = p.Deadline.Value
	}
	if p.ExecutionDate.Set {
		o.ExecutionDate = p.ExecutionDate.Value
	}
}

func applyValue[T any](dst *T, src Optional[T]) {
	if src.Set && !src.Null {
		*dst = src.Value
	}
}
