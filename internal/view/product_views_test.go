package view

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T, handler http.Handler) *catalog.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return catalog.NewClient(srv.URL, 2*time.Second)
}

func TestSearchDebouncesBursts(t *testing.T) {
	var requests int32
	var lastSearch atomic.Value
	c := newCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		lastSearch.Store(r.URL.Query().Get("search"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))

	v := NewProductListView(c, 30*time.Millisecond)
	defer v.Close()

	// A burst of keystrokes.
	v.Search("m")
	v.Search("mu")
	v.Search("mug")

	require.Eventually(t, func() bool {
		return v.Snapshot().State() == fetch.StateReady
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	assert.Equal(t, "mug", lastSearch.Load())
	assert.Equal(t, "mug", v.Query())
}

func TestListCloseBeforeFetchResolves(t *testing.T) {
	release := make(chan struct{})
	c := newCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))

	v := NewProductListView(c, time.Millisecond)
	v.Search("")
	time.Sleep(20 * time.Millisecond) // let the debounce fire

	v.Close()
	close(release)
	time.Sleep(20 * time.Millisecond)

	// The late response is a guarded no-op.
	assert.Equal(t, fetch.StateLoading, v.Snapshot().State())
}

func TestDetailStaleNavigationIsDiscarded(t *testing.T) {
	releaseOne := make(chan struct{})
	c := newCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/products/")
		if id == "1" {
			<-releaseOne
		}
		n, _ := strconv.Atoi(id)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   n,
			"name": "product-" + id,
		})
	}))

	store := cart.NewStore()
	v := NewProductDetailView(c, store)
	defer v.Close()

	// Navigate to product 1, then to product 2 before 1 resolves.
	v.Load(1)
	v.Load(2)

	require.Eventually(t, func() bool {
		return v.Snapshot().State() == fetch.StateReady
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "product-2", v.Snapshot().Data().Name)

	close(releaseOne)
	time.Sleep(20 * time.Millisecond)

	// Product 1's late response never overwrites product 2.
	assert.Equal(t, "product-2", v.Snapshot().Data().Name)
	assert.Equal(t, int64(2), v.ProductID())
}

func TestDetailCartAffordances(t *testing.T) {
	c := newCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 7, "name": "Mug", "price": 9.99,
		})
	}))

	store := cart.NewStore()
	v := NewProductDetailView(c, store)
	defer v.Close()

	// Nothing is actionable while loading.
	assert.False(t, v.AddToCart())
	assert.False(t, v.InCart())

	v.Load(7)
	require.Eventually(t, func() bool {
		return v.Snapshot().State() == fetch.StateReady
	}, time.Second, 5*time.Millisecond)

	require.True(t, v.AddToCart())
	assert.True(t, v.InCart())
	assert.True(t, store.Contains(7))

	require.True(t, v.RemoveFromCart())
	assert.False(t, v.InCart())
	assert.False(t, store.Contains(7))
}
