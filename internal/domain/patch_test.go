package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_TracksPresence(t *testing.T) {
	var payload struct {
		Notes    Optional[string]     `json:"notes"`
		Duration Optional[int]        `json:"duration"`
		Sector   Optional[string]     `json:"sector"`
		Deadline Optional[*time.Time] `json:"deadline"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"notes":"","duration":0,"deadline":null}`), &payload))

	assert.True(t, payload.Notes.Set)
	assert.False(t, payload.Notes.Null)
	assert.Equal(t, "", payload.Notes.Value)

	assert.True(t, payload.Duration.Set)
	assert.Equal(t, 0, payload.Duration.Value)

	assert.False(t, payload.Sector.Set)

	assert.True(t, payload.Deadline.Set)
	assert.True(t, payload.Deadline.Null)
	assert.Nil(t, payload.Deadline.Value)
}

func TestOrderPatch_ApplyKeepsAbsentFields(t *testing.T) {
	deadline := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	order := ServiceOrder{
		ID:          "os-1",
		Description: "Motor travado na Esteira 2",
		Sector:      "Expedição",
		Priority:    OrderPriorityHigh,
		Status:      OrderStatusOpen,
		Type:        OrderTypeCorrective,
		Duration:    45,
		Notes:       "aguardando peça",
		Deadline:    &deadline,
	}

	OrderPatch{
		Status:   Some(OrderStatusClosed),
		Duration: Some(0),
		Notes:    Some(""),
	}.Apply(&order)

	assert.Equal(t, OrderStatusClosed, order.Status)
	assert.Equal(t, 0, order.Duration)
	assert.Equal(t, "", order.Notes)
	assert.Equal(t, "Motor travado na Esteira 2", order.Description)
	assert.Equal(t, "Expedição", order.Sector)
	assert.Equal(t, OrderPriorityHigh, order.Priority)
	require.NotNil(t, order.Deadline)
	assert.True(t, deadline.Equal(*order.Deadline))
}

func TestOrderPatch_NullClearsDatesOnly(t *testing.T) {
	deadline := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	order := ServiceOrder{Sector: "Incubatório 1", Deadline: &deadline}

	OrderPatch{
		Sector:   Optional[string]{Set: true, Null: true},
		Deadline: Optional[*time.Time]{Set: true, Null: true},
	}.Apply(&order)

	assert.Equal(t, "Incubatório 1", order.Sector)
	assert.Nil(t, order.Deadline)
}
