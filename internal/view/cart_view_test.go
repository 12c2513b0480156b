package view

import (
	"testing"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, name, price string) models.Product {
	return models.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

func TestNewItemsStartAtQuantityOne(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)
	defer v.Close()

	store.Add(product(1, "Mug", "9.99"))
	assert.Equal(t, 1, v.Quantity(1))
}

func TestReAddResetsQuantity(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)
	defer v.Close()

	store.Add(product(1, "Mug", "9.99"))
	v.SetQuantity(1, "5")
	require.Equal(t, 5, v.Quantity(1))

	v.Remove(1)
	store.Add(product(1, "Mug", "9.99"))
	assert.Equal(t, 1, v.Quantity(1))
}

func TestSurvivingQuantitiesAreKept(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)
	defer v.Close()

	store.Add(product(1, "Mug", "9.99"))
	store.Add(product(2, "Bowl", "4.50"))
	v.SetQuantity(1, "3")

	v.Remove(2)
	assert.Equal(t, 3, v.Quantity(1))
}

func TestQuantityInputForNonMemberIsIgnored(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)
	defer v.Close()

	v.SetQuantity(42, "7")
	assert.Equal(t, 1, v.Quantity(42))
}

func TestBadQuantityInputResetsToOne(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)
	defer v.Close()

	store.Add(product(1, "Mug", "9.99"))
	v.SetQuantity(1, "4")
	require.Equal(t, 4, v.Quantity(1))

	v.SetQuantity(1, "banana")
	assert.Equal(t, 1, v.Quantity(1))
}

func TestRenderTotals(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)
	defer v.Close()

	store.Add(product(1, "Lamp", "19.99"))
	store.Add(product(2, "Cord", "5.00"))
	v.SetQuantity(1, "2")

	summary := v.Render()
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, "39.98", summary.Lines[0].LineTotal)
	assert.Equal(t, "5.00", summary.Lines[1].LineTotal)
	assert.Equal(t, "44.98", summary.Subtotal)
	assert.Equal(t, pricing.ShippingStandard, summary.Shipping.Name)
	assert.Equal(t, "54.98", summary.GrandTotal)
}

func TestShippingSelectionChangesGrandTotalOnly(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)
	defer v.Close()

	store.Add(product(1, "Lamp", "19.99"))

	require.True(t, v.SelectShipping(pricing.ShippingExpress))
	summary := v.Render()
	assert.Equal(t, "19.99", summary.Subtotal)
	assert.Equal(t, "44.99", summary.GrandTotal)

	assert.False(t, v.SelectShipping("overnight"))
	assert.Equal(t, pricing.ShippingExpress, v.Shipping().Name)
}

func TestEmptyCartRenderStillShowsShipping(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)
	defer v.Close()

	summary := v.Render()
	assert.Empty(t, summary.Lines)
	assert.Equal(t, "0.00", summary.Subtotal)
	assert.Equal(t, "10.00", summary.GrandTotal)
}

func TestRemountResetsQuantitiesAndShipping(t *testing.T) {
	store := cart.NewStore()
	store.Add(product(1, "Mug", "9.99"))

	v := NewCartView(store)
	v.SetQuantity(1, "4")
	require.True(t, v.SelectShipping(pricing.ShippingFree))
	v.Close()

	// Navigating back mounts a fresh view: quantities and shipping are
	// back at their defaults.
	v2 := NewCartView(store)
	defer v2.Close()
	assert.Equal(t, 1, v2.Quantity(1))
	assert.Equal(t, pricing.ShippingStandard, v2.Shipping().Name)
}

func TestClosedViewStopsTrackingCartChanges(t *testing.T) {
	store := cart.NewStore()
	v := NewCartView(store)

	store.Add(product(1, "Mug", "9.99"))
	v.SetQuantity(1, "5")
	v.Close()

	// No subscription left: membership changes no longer touch the
	// view's quantity map.
	store.Remove(1)
	assert.Equal(t, 5, v.Quantity(1))
}
