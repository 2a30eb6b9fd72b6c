package service

import (
	"errors"
	"fmt"
	"testing"

	"scentstore/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutFailReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient stock", store.ErrInsufficientStock, "insufficient_stock"},
		{"wrapped insufficient stock", fmt.Errorf("size 3: %w", store.ErrInsufficientStock), "insufficient_stock"},
		{"empty cart", store.ErrEmptyCart, "invalid_cart"},
		{"foreign cart rows", store.ErrNotOwned, "invalid_cart"},
		{"gateway down", fmt.Errorf("%w: connection refused", ErrGateway), "gateway"},
		{"anything else", errors.New("pq: deadlock detected"), "db_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkoutFailReason(tt.err))
		})
	}
}

func TestCreateFromCartIntegration(t *testing.T) {
	t.Skip("requires PostgreSQL, Redis and Kafka; covered by integration environment")
}
