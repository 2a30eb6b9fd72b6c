package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceOrder(t *testing.T) {
	assert.True(t, CanAdvanceOrder(OrderStatusPending, OrderStatusPackaging))
	assert.True(t, CanAdvanceOrder(OrderStatusPackaging, OrderStatusShipping))
	assert.True(t, CanAdvanceOrder(OrderStatusShipping, OrderStatusDelivered))

	// no skipping forward
	assert.False(t, CanAdvanceOrder(OrderStatusPending, OrderStatusShipping))
	assert.False(t, CanAdvanceOrder(OrderStatusPackaging, OrderStatusDelivered))

	// no moving backward
	assert.False(t, CanAdvanceOrder(OrderStatusShipping, OrderStatusPackaging))
	assert.False(t, CanAdvanceOrder(OrderStatusDelivered, OrderStatusShipping))

	// terminal states go nowhere
	assert.False(t, CanAdvanceOrder(OrderStatusDelivered, OrderStatusPackaging))
	assert.False(t, CanAdvanceOrder(OrderStatusCancelled, OrderStatusPending))

	// CANCELLED is never a forward target
	assert.False(t, CanAdvanceOrder(OrderStatusPending, OrderStatusCancelled))
	assert.False(t, CanAdvanceOrder(OrderStatusPackaging, OrderStatusCancelled))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, OrderStatusTerminal(OrderStatusDelivered))
	assert.True(t, OrderStatusTerminal(OrderStatusCancelled))
	assert.False(t, OrderStatusTerminal(OrderStatusPending))
	assert.False(t, OrderStatusTerminal(OrderStatusShipping))

	assert.True(t, TxStatusTerminal(TxStatusSettled))
	assert.True(t, TxStatusTerminal(TxStatusExpire))
	assert.True(t, TxStatusTerminal(TxStatusFailed))
	assert.False(t, TxStatusTerminal(TxStatusPending))
}
