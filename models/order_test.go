package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanCancel(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{OrderPending, true},
		{OrderConfirmed, true},
		{OrderShipping, false},
		{OrderCompleted, false},
		{OrderCancelled, false},
	}
	for _, tc := range cases {
		o := Order{OrderStatus: tc.status}
		assert.Equal(t, tc.want, o.CanCancel(), "status %s", tc.status)
	}
}

func TestCanTransitionToForwardOnly(t *testing.T) {
	o := Order{OrderStatus: OrderConfirmed}

	assert.True(t, o.CanTransitionTo(OrderShipping))
	assert.True(t, o.CanTransitionTo(OrderCompleted))
	assert.False(t, o.CanTransitionTo(OrderPending), "no going back")
	assert.False(t, o.CanTransitionTo(OrderConfirmed), "no self transition")
}

func TestCanTransitionToCancelled(t *testing.T) {
	assert.True(t, Order{OrderStatus: OrderPending}.CanTransitionTo(OrderCancelled))
	assert.True(t, Order{OrderStatus: OrderConfirmed}.CanTransitionTo(OrderCancelled))
	assert.False(t, Order{OrderStatus: OrderShipping}.CanTransitionTo(OrderCancelled))
	assert.False(t, Order{OrderStatus: OrderCancelled}.CanTransitionTo(OrderCancelled))
}

func TestCanTransitionToUnknownStatus(t *testing.T) {
	o := Order{OrderStatus: OrderPending}
	assert.False(t, o.CanTransitionTo("Archived"))
	assert.False(t, Order{OrderStatus: OrderCancelled}.CanTransitionTo(OrderCompleted))
}
