package view

import (
	"testing"

	"storefront/internal/cart"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyCartHasEmptyHistory(t *testing.T) {
	v := NewOrderHistoryView(cart.NewStore())
	assert.Empty(t, v.Orders())
}

func TestHistoryIsOneSyntheticPendingOrder(t *testing.T) {
	store := cart.NewStore()
	store.Add(product(1, "Lamp", "19.99"))
	store.Add(product(2, "Cord", "5.00"))

	v := NewOrderHistoryView(store)
	orders := v.Orders()
	require.Len(t, orders, 1)

	order := orders[0]
	assert.NotEmpty(t, order.ID)
	assert.False(t, order.Date.IsZero())
	assert.Equal(t, models.OrderStatusPending, order.Status)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, "Lamp", order.Lines[0].Name)
	assert.Equal(t, 1, order.Lines[0].Quantity)
	assert.Equal(t, 1, order.Lines[1].Quantity)
	assert.Equal(t, "24.99", order.Total.StringFixed(2))
}

func TestHistoryTracksLiveCart(t *testing.T) {
	store := cart.NewStore()
	v := NewOrderHistoryView(store)

	store.Add(product(1, "Lamp", "19.99"))
	require.Len(t, v.Orders(), 1)

	store.Remove(1)
	assert.Empty(t, v.Orders())
}
