package pricing

import (
	"strconv"
	"strings"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// Quantities maps a product ID to its purchase quantity. Membership in
// the cart and quantity are tracked separately: an item with no entry
// here counts as quantity 1. Quantities are owned by the cart view and
// reset when that view is torn down.
type Quantities map[int64]int

// Get returns the quantity for a product, defaulting to 1.
func (q Quantities) Get(productID int64) int {
	n, ok := q[productID]
	if !ok || n < 1 {
		return 1
	}
	return n
}

// Set stores a quantity, clamping anything below 1 up to 1.
func (q Quantities) Set(productID int64, n int) {
	if n < 1 {
		n = 1
	}
	q[productID] = n
}

// SetFromInput parses free-form user input. Anything that does not
// parse to a positive integer resets the entry to 1 rather than
// rejecting the edit.
func (q Quantities) SetFromInput(productID int64, raw string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		q[productID] = 1
		return
	}
	q[productID] = n
}

// Increment bumps the quantity by one.
func (q Quantities) Increment(productID int64) {
	q[productID] = q.Get(productID) + 1
}

// Decrement lowers the quantity by one with a floor of 1.
func (q Quantities) Decrement(productID int64) {
	n := q.Get(productID) - 1
	if n < 1 {
		n = 1
	}
	q[productID] = n
}

// Remove drops the entry so a later re-add of the product starts back
// at quantity 1.
func (q Quantities) Remove(productID int64) {
	delete(q, productID)
}

// ShippingOption is one fixed-cost shipping tier.
type ShippingOption struct {
	Name  string          `json:"name"`
	Label string          `json:"label"`
	Cost  decimal.Decimal `json:"cost"`
}

const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
	ShippingFree     = "free"
)

// ShippingOptions returns the fixed tier set in display order.
func ShippingOptions() []ShippingOption {
	return []ShippingOption{
		{Name: ShippingStandard, Label: "Standard shipping - $10.00", Cost: decimal.NewFromInt(10)},
		{Name: ShippingExpress, Label: "Express shipping - $25.00", Cost: decimal.NewFromInt(25)},
		{Name: ShippingFree, Label: "Free shipping - $0.00", Cost: decimal.Zero},
	}
}

// DefaultShipping returns the tier preselected for a fresh cart view.
func DefaultShipping() ShippingOption {
	return ShippingOptions()[0]
}

// ShippingByName looks up a tier for re-selection.
func ShippingByName(name string) (ShippingOption, bool) {
	for _, opt := range ShippingOptions() {
		if opt.Name == name {
			return opt, true
		}
	}
	return ShippingOption{}, false
}

// ItemTotal is the line total for one cart entry: unit price times the
// clamped quantity. It can never be negative or zero-quantity.
func ItemTotal(item models.CartItem, q Quantities) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(q.Get(item.ProductID))))
}

// Subtotal accumulates line totals left to right in display order so
// the result is deterministic for a given cart.
func Subtotal(items []models.CartItem, q Quantities) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(ItemTotal(item, q))
	}
	return total
}

// GrandTotal adds the selected shipping cost to the cart subtotal. An
// empty cart still pays shipping; the total is not hidden.
func GrandTotal(subtotal decimal.Decimal, shipping ShippingOption) decimal.Decimal {
	return subtotal.Add(shipping.Cost)
}

// FormatAmount renders a monetary value with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
