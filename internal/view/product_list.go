// Package view implements the page-level consumers of the cart store,
// the pricing functions, and the fetch contract. Every view owns its
// teardown: Close unsubscribes from the cart, closes the fetcher, and
// stops any debounce timer, so nothing fired after unmount can touch
// view state.
package view

import (
	"context"
	"sync"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/fetch"
	"storefront/internal/models"
)

// ProductListView backs the product list page and its free-text
// search. Keystroke bursts are debounced into a single catalog fetch;
// a query change while a fetch is in flight supersedes it.
type ProductListView struct {
	catalog  *catalog.Client
	fetcher  *fetch.Fetcher[[]models.Product]
	debounce *fetch.Debouncer

	mu    sync.Mutex
	query string
}

// NewProductListView creates the view; call Search to start the first
// fetch.
func NewProductListView(c *catalog.Client, debounceWindow time.Duration) *ProductListView {
	return &ProductListView{
		catalog:  c,
		fetcher:  fetch.NewFetcher[[]models.Product](),
		debounce: fetch.NewDebouncer(debounceWindow),
	}
}

// Search records the query and schedules a fetch after the quiescence
// window. Only the last query of a burst reaches the catalog.
func (v *ProductListView) Search(query string) {
	v.mu.Lock()
	v.query = query
	v.mu.Unlock()

	v.debounce.Trigger(v.load)
}

// Refresh restarts the fetch for the current query immediately,
// bypassing the debounce. A settled failure stays settled until the
// user acts again; re-entering the page counts as such an action.
func (v *ProductListView) Refresh() {
	v.load()
}

func (v *ProductListView) load() {
	v.mu.Lock()
	q := v.query
	v.mu.Unlock()

	v.fetcher.Load(context.Background(), q, func(ctx context.Context) ([]models.Product, error) {
		return v.catalog.ListProducts(ctx, q)
	})
}

// Query returns the current search term.
func (v *ProductListView) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Snapshot returns the current three-state result.
func (v *ProductListView) Snapshot() fetch.Result[[]models.Product] {
	return v.fetcher.Snapshot()
}

// Close unmounts the view.
func (v *ProductListView) Close() {
	v.debounce.Stop()
	v.fetcher.Close()
}
