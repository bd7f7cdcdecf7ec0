package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderTransitions(t *testing.T) {
	assert.True(t, CanTransitionOrder(OrderStatusPending, OrderStatusDelivered))
	assert.True(t, CanTransitionOrder(OrderStatusShipped, OrderStatusDelivered))
	assert.True(t, CanTransitionOrder(OrderStatusDelivered, OrderStatusReturned))

	assert.False(t, CanTransitionOrder(OrderStatusDelivered, OrderStatusDelivered))
	assert.False(t, CanTransitionOrder(OrderStatusReturned, OrderStatusDelivered))
	assert.False(t, CanTransitionOrder(OrderStatusCancelled, OrderStatusPending))
	assert.False(t, CanTransitionOrder(OrderStatusPending, "lost"))
}

func TestDeliveredReachableOnlyFromLiveStatuses(t *testing.T) {
	for from := range orderTransitions {
		if CanTransitionOrder(from, OrderStatusDelivered) {
			assert.NotContains(t, []string{OrderStatusDelivered, OrderStatusReturned, OrderStatusCancelled}, from)
		}
	}
}

func TestWithdrawalTransitions(t *testing.T) {
	assert.True(t, IsValidWithdrawalStatus(WithdrawalStatusApproved))
	assert.False(t, IsValidWithdrawalStatus("paid"))

	assert.True(t, CanTransitionWithdrawal(WithdrawalStatusPending, WithdrawalStatusRejected))
	assert.True(t, CanTransitionWithdrawal(WithdrawalStatusApproved, WithdrawalStatusCompleted))
	assert.False(t, CanTransitionWithdrawal(WithdrawalStatusCompleted, WithdrawalStatusPending))
}
