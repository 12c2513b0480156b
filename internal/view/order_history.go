package view

import (
	"time"

	"storefront/internal/cart"
	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderHistoryView backs the order-history page. There is no order
// store behind it: the page is a projection of the live cart, so it
// shows at most one synthetic pending order and never a completed
// purchase. A non-empty cart renders as one order with quantity 1 per
// line; an empty cart renders as an empty history.
type OrderHistoryView struct {
	cart *cart.Store
}

// NewOrderHistoryView creates the view
func NewOrderHistoryView(cartStore *cart.Store) *OrderHistoryView {
	return &OrderHistoryView{cart: cartStore}
}

// Orders recomputes the projection from the current cart.
func (v *OrderHistoryView) Orders() []models.Order {
	items := v.cart.Items()
	if len(items) == 0 {
		return nil
	}

	lines := make([]models.OrderLine, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		lines = append(lines, models.OrderLine{
			Name:     item.Name,
			Quantity: 1,
			Price:    item.Price,
		})
		total = total.Add(item.Price)
	}

	return []models.Order{{
		ID:     uuid.New().String(),
		Date:   time.Now(),
		Lines:  lines,
		Total:  total,
		Status: models.OrderStatusPending,
	}}
}
