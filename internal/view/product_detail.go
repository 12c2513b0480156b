package view

import (
	"context"
	"strconv"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/fetch"
	"storefront/internal/models"
)

// ProductDetailView backs the single-product page. Rapid navigation
// between products re-keys the fetch; the generation guard in the
// fetcher keeps a slow earlier product from overwriting the one
// currently shown.
type ProductDetailView struct {
	catalog *catalog.Client
	cart    *cart.Store
	fetcher *fetch.Fetcher[*models.Product]

	mu        sync.Mutex
	productID int64
}

// NewProductDetailView creates the view
func NewProductDetailView(c *catalog.Client, cartStore *cart.Store) *ProductDetailView {
	return &ProductDetailView{
		catalog: c,
		cart:    cartStore,
		fetcher: fetch.NewFetcher[*models.Product](),
	}
}

// Load starts fetching the product with the given ID, superseding any
// fetch still in flight.
func (v *ProductDetailView) Load(id int64) {
	v.mu.Lock()
	v.productID = id
	v.mu.Unlock()

	v.fetcher.Load(context.Background(), strconv.FormatInt(id, 10), func(ctx context.Context) (*models.Product, error) {
		return v.catalog.GetProduct(ctx, id)
	})
}

// ProductID returns the ID of the most recent Load.
func (v *ProductDetailView) ProductID() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.productID
}

// Snapshot returns the current three-state result.
func (v *ProductDetailView) Snapshot() fetch.Result[*models.Product] {
	return v.fetcher.Snapshot()
}

// InCart reports whether the displayed product is in the cart. It
// drives the Add/Remove affordance, so it is false while loading.
func (v *ProductDetailView) InCart() bool {
	res := v.fetcher.Snapshot()
	if res.State() != fetch.StateReady {
		return false
	}
	return v.cart.Contains(res.Data().ID)
}

// AddToCart adds the displayed product. It reports false when the
// product is not ready yet; adding an already-present product is a
// no-op inside the store.
func (v *ProductDetailView) AddToCart() bool {
	res := v.fetcher.Snapshot()
	if res.State() != fetch.StateReady {
		return false
	}
	v.cart.Add(*res.Data())
	return true
}

// RemoveFromCart removes the displayed product from the cart.
func (v *ProductDetailView) RemoveFromCart() bool {
	res := v.fetcher.Snapshot()
	if res.State() != fetch.StateReady {
		return false
	}
	v.cart.Remove(res.Data().ID)
	return true
}

// Close unmounts the view.
func (v *ProductDetailView) Close() {
	v.fetcher.Close()
}
