package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_UnmarshalJSON(t *testing.T) {
	raw := []byte(`{
		"id": "evt_1",
		"event_type": "purchase.confirmed",
		"resource_type": "purchase",
		"resource_id": "pur_42",
		"occurred_at": "2026-08-31T22:15:00Z",
		"api_version": "2.1",
		"payload": {"line_items": [{"type": "product", "final_amount_cents": 14500}]}
	}`)

	var e Event
	require.NoError(t, json.Unmarshal(raw, &e))

	assert.Equal(t, "evt_1", e.ID)
	assert.Equal(t, EventPurchaseConfirmed, e.EventType)
	assert.Equal(t, "purchase", e.ResourceType)
	assert.Equal(t, "pur_42", e.ResourceID)
	assert.Equal(t, time.Date(2026, 8, 31, 22, 15, 0, 0, time.UTC), e.OccurredAt)
	assert.NotEmpty(t, e.Payload)
}

func TestEvent_DecodePayload(t *testing.T) {
	e := Event{
		EventType: EventPurchaseConfirmed,
		Payload:   json.RawMessage(`{"id":"pur_1","line_items":[{"type":"tip","final_amount_cents":2000}]}`),
	}

	var p Purchase
	require.NoError(t, e.DecodePayload(&p))
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, LineTypeTip, p.LineItems[0].Type)
	assert.Equal(t, int64(2000), p.LineItems[0].FinalAmountCents)
}

func TestEvent_DecodePayload_Malformed(t *testing.T) {
	e := Event{Payload: json.RawMessage(`{"broken`)}

	var p Purchase
	assert.Error(t, e.DecodePayload(&p))
}
