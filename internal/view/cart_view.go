package view

import (
	"sync"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/pricing"
)

// CartView backs the cart page. Per-item quantities and the shipping
// selection are view-local on purpose: navigating away and back resets
// quantities to 1 and shipping to the default tier. That mirrors the
// original storefront and is kept as specified behavior, not fixed.
type CartView struct {
	cart        *cart.Store
	unsubscribe func()

	mu         sync.Mutex
	quantities pricing.Quantities
	shipping   pricing.ShippingOption
}

// CartLine is one rendered row of the cart.
type CartLine struct {
	Item      models.CartItem `json:"item"`
	Quantity  int             `json:"quantity"`
	UnitPrice string          `json:"unit_price"`
	LineTotal string          `json:"line_total"`
}

// CartSummary is the rendered cart page: lines in insertion order plus
// the derived totals, all formatted to two decimal places.
type CartSummary struct {
	Lines           []CartLine               `json:"lines"`
	ItemCount       int                      `json:"item_count"`
	Subtotal        string                   `json:"subtotal"`
	Shipping        pricing.ShippingOption   `json:"shipping"`
	ShippingOptions []pricing.ShippingOption `json:"shipping_options"`
	GrandTotal      string                   `json:"grand_total"`
}

// NewCartView mounts the view: it subscribes to the cart store and
// seeds a quantity of 1 for anything already in the cart.
func NewCartView(cartStore *cart.Store) *CartView {
	v := &CartView{
		cart:       cartStore,
		quantities: pricing.Quantities{},
		shipping:   pricing.DefaultShipping(),
	}
	v.unsubscribe = cartStore.Subscribe(v.syncQuantities)
	v.syncQuantities()
	return v
}

// syncQuantities runs on every cart membership change: new items start
// at quantity 1, removed items drop their entry so a re-add restarts
// at 1. Quantities of surviving items are kept.
func (v *CartView) syncQuantities() {
	items := v.cart.Items()

	v.mu.Lock()
	defer v.mu.Unlock()

	present := make(map[int64]bool, len(items))
	for _, item := range items {
		present[item.ProductID] = true
		if _, ok := v.quantities[item.ProductID]; !ok {
			v.quantities.Set(item.ProductID, 1)
		}
	}
	for id := range v.quantities {
		if !present[id] {
			v.quantities.Remove(id)
		}
	}
}

// SetQuantity applies raw user input for one item. Input that does not
// parse to a positive integer resets the quantity to 1. Input for a
// product not in the cart is ignored.
func (v *CartView) SetQuantity(productID int64, raw string) {
	if !v.cart.Contains(productID) {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.quantities.SetFromInput(productID, raw)
}

// Increment bumps an item's quantity by one.
func (v *CartView) Increment(productID int64) {
	if !v.cart.Contains(productID) {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.quantities.Increment(productID)
}

// Decrement lowers an item's quantity by one, never below 1.
func (v *CartView) Decrement(productID int64) {
	if !v.cart.Contains(productID) {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.quantities.Decrement(productID)
}

// SelectShipping switches to the named tier. Unknown names leave the
// selection unchanged and report false.
func (v *CartView) SelectShipping(name string) bool {
	opt, ok := pricing.ShippingByName(name)
	if !ok {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shipping = opt
	return true
}

// Shipping returns the currently selected tier.
func (v *CartView) Shipping() pricing.ShippingOption {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shipping
}

// Quantity returns the current quantity for one item.
func (v *CartView) Quantity(productID int64) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.quantities.Get(productID)
}

// Remove takes the item out of the cart; the subscription drops its
// quantity entry before Remove returns.
func (v *CartView) Remove(productID int64) {
	v.cart.Remove(productID)
}

// Render computes the cart page from current state. Line totals
// accumulate left to right in display order.
func (v *CartView) Render() CartSummary {
	items := v.cart.Items()

	v.mu.Lock()
	quantities := make(pricing.Quantities, len(v.quantities))
	for id, n := range v.quantities {
		quantities[id] = n
	}
	shipping := v.shipping
	v.mu.Unlock()

	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLine{
			Item:      item,
			Quantity:  quantities.Get(item.ProductID),
			UnitPrice: pricing.FormatAmount(item.Price),
			LineTotal: pricing.FormatAmount(pricing.ItemTotal(item, quantities)),
		})
	}

	subtotal := pricing.Subtotal(items, quantities)
	return CartSummary{
		Lines:           lines,
		ItemCount:       len(items),
		Subtotal:        pricing.FormatAmount(subtotal),
		Shipping:        shipping,
		ShippingOptions: pricing.ShippingOptions(),
		GrandTotal:      pricing.FormatAmount(pricing.GrandTotal(subtotal, shipping)),
	}
}

// Close unmounts the view and drops its cart subscription. Quantities
// and the shipping selection die with it.
func (v *CartView) Close() {
	v.unsubscribe()
}
