package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListProducts(t *testing.T) {
	var gotSearch string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/", r.URL.Path)
		gotSearch = r.URL.Query().Get("search")
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 1, "name": "Mug", "price": 9.99, "imageUrl": "http://img/1"},
			{"id": 2, "name": "Bowl", "price": 4.5},
		})
	}))

	products, err := c.ListProducts(context.Background(), "mu")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "mu", gotSearch)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "9.99", products[0].Price.StringFixed(2))
}

func TestGetProductNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Product not found"})
	}))

	_, err := c.GetProduct(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRejectionSurfacesServerDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Username already registered"})
	}))

	_, err := c.Signup(context.Background(), "bob", "bob@example.com", "pw")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Username already registered", apiErr.Detail)
}

func TestRejectionWithoutBodyGetsGenericDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.ListProducts(context.Background(), "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "the catalog service rejected the request", apiErr.Detail)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listening anymore

	c := NewClient(url, 500*time.Millisecond)
	_, err := c.ListProducts(context.Background(), "")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "catalog exploded"})
	}))

	for i := 0; i < 3; i++ {
		_, err := c.GetProduct(context.Background(), 1)
		require.Error(t, err)
	}
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))

	// Open now: the next call fails as an ordinary error without a
	// request reaching the upstream.
	_, err := c.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestLoginSendsPasswordGrantForm(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostFormValue("username"))
		assert.Equal(t, "secret", r.PostFormValue("password"))
		assert.Equal(t, "password", r.PostFormValue("grant_type"))
		writeJSON(w, http.StatusOK, models.Token{AccessToken: "tok-123", TokenType: "bearer"})
	}))

	token, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token.AccessToken)
}

func TestCurrentUserSendsBearerToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me/", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, models.User{ID: 7, Username: "alice", Email: "alice@example.com"})
	}))

	user, err := c.CurrentUser(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestCurrentUserUnauthorized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	}))

	_, err := c.CurrentUser(context.Background(), "expired")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}
