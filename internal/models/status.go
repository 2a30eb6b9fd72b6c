package models

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPackaging = "PACKAGING"
	OrderStatusShipping  = "SHIPPING"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Payment statuses
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Gateway transaction statuses (lowercase, as delivered by the gateway)
const (
	TxStatusPending = "pending"
	TxStatusSettled = "settled"
	TxStatusExpire  = "expire"
	TxStatusFailed  = "failed"
)

// validNextOrderStatus is the forward-only order transition table.
// Cancellation is handled separately because it is permitted only from
// PENDING (payment failure/expiry) or PACKAGING (customer cancel).
var validNextOrderStatus = map[string]map[string]bool{
	OrderStatusPending:   {OrderStatusPackaging: true},
	OrderStatusPackaging: {OrderStatusShipping: true},
	OrderStatusShipping:  {OrderStatusDelivered: true},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanAdvanceOrder reports whether from -> to is a valid forward transition.
func CanAdvanceOrder(from, to string) bool {
	return validNextOrderStatus[from][to]
}

// OrderStatusTerminal reports whether no further transition is expected.
func OrderStatusTerminal(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}

// TxStatusTerminal reports whether a gateway transaction is done.
func TxStatusTerminal(status string) bool {
	return status == TxStatusSettled || status == TxStatusExpire || status == TxStatusFailed
}
