package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client talks to the remote catalog/auth service. Catalog reads go
// through a circuit breaker and are coalesced per key with
// singleflight; auth calls go straight out so a run of bad credentials
// cannot trip the breaker. Nothing here retries: a failed request
// surfaces its error and waits for the next user-triggered action.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	group   singleflight.Group
	logger  *zap.Logger
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	logger := util.GetLogger()

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			util.CircuitBreakerState.WithLabelValues(name).Set(state)

			logger.Info("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	util.CircuitBreakerState.WithLabelValues("catalog").Set(0)

	return &Client{
		http:    httpClient,
		breaker: breaker,
		logger:  logger,
	}
}

// ListProducts fetches the product catalog, optionally filtered by a
// free-text search term. Concurrent calls for the same term share one
// request.
func (c *Client) ListProducts(ctx context.Context, search string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "catalog.ListProducts")
	defer span.End()

	key := "list:" + search
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.breaker.Execute(func() (interface{}, error) {
			return c.doListProducts(ctx, search)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

func (c *Client) doListProducts(ctx context.Context, search string) ([]models.Product, error) {
	start := time.Now()
	defer func() {
		util.CatalogRequestDuration.WithLabelValues("list_products").Observe(time.Since(start).Seconds())
	}()

	var products []models.Product
	req := c.http.R().SetContext(ctx).SetResult(&products)
	if search != "" {
		req.SetQueryParam("search", search)
	}

	resp, err := req.Get("/products/")
	if err != nil {
		util.CatalogRequestsTotal.WithLabelValues("list_products", "transport").Inc()
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	if resp.IsError() {
		util.CatalogRequestsTotal.WithLabelValues("list_products", "rejected").Inc()
		return nil, apiError(resp)
	}

	util.CatalogRequestsTotal.WithLabelValues("list_products", "ok").Inc()
	return products, nil
}

// GetProduct fetches one product by ID. A missing product is
// ErrNotFound, not a transport failure.
func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "catalog.GetProduct")
	defer span.End()

	key := fmt.Sprintf("product:%d", id)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.breaker.Execute(func() (interface{}, error) {
			return c.doGetProduct(ctx, id)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

func (c *Client) doGetProduct(ctx context.Context, id int64) (*models.Product, error) {
	start := time.Now()
	defer func() {
		util.CatalogRequestDuration.WithLabelValues("get_product").Observe(time.Since(start).Seconds())
	}()

	var product models.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&product).
		Get(fmt.Sprintf("/products/%d", id))
	if err != nil {
		util.CatalogRequestsTotal.WithLabelValues("get_product", "transport").Inc()
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		util.CatalogRequestsTotal.WithLabelValues("get_product", "not_found").Inc()
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if resp.IsError() {
		util.CatalogRequestsTotal.WithLabelValues("get_product", "rejected").Inc()
		return nil, apiError(resp)
	}

	util.CatalogRequestsTotal.WithLabelValues("get_product", "ok").Inc()
	return &product, nil
}

// Login exchanges credentials for a bearer token via the form-encoded
// password grant.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Token, error) {
	ctx, span := util.StartSpan(ctx, "catalog.Login")
	defer span.End()

	var token models.Token
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username":   username,
			"password":   password,
			"grant_type": "password",
		}).
		SetResult(&token).
		Post("/token")
	if err != nil {
		util.CatalogRequestsTotal.WithLabelValues("login", "transport").Inc()
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	if resp.IsError() {
		util.CatalogRequestsTotal.WithLabelValues("login", "rejected").Inc()
		return nil, apiError(resp)
	}

	util.CatalogRequestsTotal.WithLabelValues("login", "ok").Inc()
	return &token, nil
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "catalog.Signup")
	defer span.End()

	var user models.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"username": username,
			"email":    email,
			"password": password,
		}).
		SetResult(&user).
		Post("/users/")
	if err != nil {
		util.CatalogRequestsTotal.WithLabelValues("signup", "transport").Inc()
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	if resp.IsError() {
		util.CatalogRequestsTotal.WithLabelValues("signup", "rejected").Inc()
		return nil, apiError(resp)
	}

	util.CatalogRequestsTotal.WithLabelValues("signup", "ok").Inc()
	return &user, nil
}

// CurrentUser fetches the profile behind the bearer token. A 401 is
// ErrUnauthorized; the session layer turns that into a forced logout.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "catalog.CurrentUser")
	defer span.End()

	var user models.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetResult(&user).
		Get("/users/me/")
	if err != nil {
		util.CatalogRequestsTotal.WithLabelValues("current_user", "transport").Inc()
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		util.CatalogRequestsTotal.WithLabelValues("current_user", "unauthorized").Inc()
		return nil, ErrUnauthorized
	}
	if resp.IsError() {
		util.CatalogRequestsTotal.WithLabelValues("current_user", "rejected").Inc()
		return nil, apiError(resp)
	}

	util.CatalogRequestsTotal.WithLabelValues("current_user", "ok").Inc()
	return &user, nil
}
