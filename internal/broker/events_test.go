package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tasleem/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageRoutesLedgerEvents(t *testing.T) {
	orderID := int64(42)
	event := models.LedgerEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeProfitCredited,
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		MerchantID: 7,
		OrderID:    &orderID,
		Amount:     1000,
		Status:     models.OrderStatusDelivered,
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var got *models.LedgerEvent
	handler := NewEventHandler()
	handler.OnLedgerEvent(func(_ context.Context, e *models.LedgerEvent) error {
		got = e
		return nil
	})

	require.NoError(t, handler.HandleMessage(context.Background(), kafka.Message{Value: payload}))
	require.NotNil(t, got)
	assert.Equal(t, "evt-1", got.EventID)
	assert.Equal(t, int64(7), got.MerchantID)
	require.NotNil(t, got.OrderID)
	assert.Equal(t, orderID, *got.OrderID)
	assert.Nil(t, got.WithdrawalID)
}

func TestHandleMessageSkipsUnknownTypes(t *testing.T) {
	called := false
	handler := NewEventHandler()
	handler.OnLedgerEvent(func(context.Context, *models.LedgerEvent) error {
		called = true
		return nil
	})

	err := handler.HandleMessage(context.Background(), kafka.Message{Value: []byte(`{"event_id":"x","event_type":"SOMETHING_ELSE"}`)})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	handler := NewEventHandler()
	assert.Error(t, handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")}))
}
