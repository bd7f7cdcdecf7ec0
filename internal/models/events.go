package models

import "time"

// Event types
const (
	EventTypeOrderCreated            = "ORDER_CREATED"
	EventTypeOrderStatusChanged      = "ORDER_STATUS_CHANGED"
	EventTypeProfitCredited          = "PROFIT_CREDITED"
	EventTypeWithdrawalRequested     = "WITHDRAWAL_REQUESTED"
	EventTypeWithdrawalStatusChanged = "WITHDRAWAL_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerEvent is published after every committed ledger-affecting operation.
// Amount is the profit for order events and the payout amount for withdrawal events.
type LedgerEvent struct {
	BaseEvent
	MerchantID     int64  `json:"merchant_id"`
	OrderID        *int64 `json:"order_id,omitempty"`
	WithdrawalID   *int64 `json:"withdrawal_id,omitempty"`
	Amount         int64  `json:"amount"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Status         string `json:"status"`
}

// JournalEntry converts the event into its journal row
func (e *LedgerEvent) JournalEntry(recordedAt time.Time) *JournalEntry {
	return &JournalEntry{
		EventID:      e.EventID,
		EventType:    e.EventType,
		MerchantID:   e.MerchantID,
		OrderID:      e.OrderID,
		WithdrawalID: e.WithdrawalID,
		Amount:       e.Amount,
		Status:       e.Status,
		OccurredAt:   e.Timestamp,
		RecordedAt:   recordedAt,
	}
}
