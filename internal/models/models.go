package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item as served by the remote product API.
// It is immutable once fetched; a later fetch of the same ID may
// carry updated fields.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
}

// CartItem is one product's membership record in the cart, holding the
// snapshot captured at add time so the cart renders without re-fetching.
type CartItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl"`
	AddedAt   time.Time       `json:"added_at"`
}

// Snapshot captures a product into a cart entry.
func Snapshot(p Product) CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		AddedAt:   time.Now(),
	}
}

// User is the authenticated profile returned by the auth service.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Token is the bearer token issued by the auth service.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// OrderLine is one line of the synthesized order projection.
type OrderLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is a view-only projection built from the live cart at render
// time. It is never persisted; there is no real order history behind it.
type Order struct {
	ID     string          `json:"id"`
	Date   time.Time       `json:"date"`
	Lines  []OrderLine     `json:"lines"`
	Total  decimal.Decimal `json:"total"`
	Status string          `json:"status"`
}

// Order statuses
const (
	OrderStatusPending = "Pending"
)
