package models

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusReturned  = "returned"
)

// Withdrawal statuses
const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusRejected  = "rejected"
)

// orderTransitions lists the statuses reachable from each order status.
// delivered can only be entered once, so the profit credit happens once per order.
// Leaving delivered for returned does not reverse the credit.
var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusDelivered: {OrderStatusReturned},
	OrderStatusCancelled: nil,
	OrderStatusReturned:  nil,
}

var withdrawalTransitions = map[string][]string{
	WithdrawalStatusPending:   {WithdrawalStatusApproved, WithdrawalStatusCompleted, WithdrawalStatusRejected},
	WithdrawalStatusApproved:  {WithdrawalStatusCompleted, WithdrawalStatusRejected},
	WithdrawalStatusCompleted: nil,
	WithdrawalStatusRejected:  nil,
}

// IsValidOrderStatus reports whether status belongs to the order status set
func IsValidOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

// CanTransitionOrder reports whether an order may move from one status to another
func CanTransitionOrder(from, to string) bool {
	return allowed(orderTransitions, from, to)
}

// IsValidWithdrawalStatus reports whether status belongs to the withdrawal status set
func IsValidWithdrawalStatus(status string) bool {
	_, ok := withdrawalTransitions[status]
	return ok
}

// CanTransitionWithdrawal reports whether a withdrawal may move from one status to another
func CanTransitionWithdrawal(from, to string) bool {
	return allowed(withdrawalTransitions, from, to)
}

func allowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}
