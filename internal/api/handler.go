package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/fetch"
	"storefront/internal/session"
	"storefront/internal/util"
	"storefront/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the live storefront session over local HTTP. Page
// endpoints respond with the owning view's current three-state
// snapshot: an in-flight fetch renders as "loading" and the UI polls
// until it settles.
type Handler struct {
	cart     *cart.Store
	catalog  *catalog.Client
	session  *session.Session
	list     *view.ProductListView
	detail   *view.ProductDetailView
	cartView *view.CartView
	orders   *view.OrderHistoryView

	mu          sync.Mutex
	listStarted bool
}

// NewHandler mounts the page views and creates the HTTP handler set
func NewHandler(
	cartStore *cart.Store,
	catalogClient *catalog.Client,
	sess *session.Session,
	debounceWindow time.Duration,
) *Handler {
	return &Handler{
		cart:     cartStore,
		catalog:  catalogClient,
		session:  sess,
		list:     view.NewProductListView(catalogClient, debounceWindow),
		detail:   view.NewProductDetailView(catalogClient, cartStore),
		cartView: view.NewCartView(cartStore),
		orders:   view.NewOrderHistoryView(cartStore),
	}
}

// Close unmounts the views on shutdown
func (h *Handler) Close() {
	h.list.Close()
	h.detail.Close()
	h.cartView.Close()
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.PUT("/cart/items/:id/quantity", h.setQuantity)
		v1.PUT("/cart/shipping", h.setShipping)
		v1.POST("/cart/checkout", h.checkout)

		v1.GET("/orders", h.listOrders)

		v1.POST("/auth/login", h.login)
		v1.POST("/auth/signup", h.signup)
		v1.GET("/auth/me", h.currentUser)
		v1.POST("/auth/logout", h.logout)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts renders the product list page. A changed search term
// restarts the debounced fetch; polling with the same term just
// returns the current snapshot so the debounce window can elapse.
// A snapshot that settled in the error state is retried on the next
// request for the same term, since reaching the page again is a user
// action, not a poll.
func (h *Handler) listProducts(c *gin.Context) {
	search := c.Query("search")

	h.mu.Lock()
	snap := h.list.Snapshot()
	switch {
	case !h.listStarted || search != h.list.Query():
		h.listStarted = true
		h.list.Search(search)
	case snap.State() == fetch.StateError:
		h.list.Refresh()
	}
	h.mu.Unlock()

	c.JSON(http.StatusOK, resultBody(snap, "products"))
}

// getProduct renders the product detail page. Navigating to a new ID
// re-keys the fetch; the stale-response guard lives in the view.
func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	snap := h.detail.Snapshot()
	if id != h.detail.ProductID() {
		h.detail.Load(id)
		snap = h.detail.Snapshot()
	} else if snap.State() == fetch.StateError {
		// Same product, settled failure: re-navigation retries it. The
		// caller still sees the error once while the retry runs.
		h.detail.Load(id)
	}

	body := resultBody(snap, "product")
	body["in_cart"] = h.detail.InCart()
	c.JSON(http.StatusOK, body)
}

// getCart renders the cart page with derived totals.
func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartView.Render())
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// addCartItem adds a product to the cart by ID. The snapshot comes
// from a fresh catalog fetch; a duplicate add is a no-op.
func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch product",
			"details": err.Error(),
		})
		return
	}

	h.cart.Add(*product)
	c.JSON(http.StatusCreated, h.cartView.Render())
}

// removeCartItem removes a product from the cart. Removing a
// non-member is a no-op and still answers 200.
func (h *Handler) removeCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	h.cartView.Remove(id)
	c.JSON(http.StatusOK, h.cartView.Render())
}

type quantityRequest struct {
	// Raw user input on purpose; anything that does not parse to a
	// positive integer resets the quantity to 1.
	Quantity string `json:"quantity"`
}

// setQuantity applies a quantity edit for one cart line.
func (h *Handler) setQuantity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.cartView.SetQuantity(id, req.Quantity)
	c.JSON(http.StatusOK, h.cartView.Render())
}

type shippingRequest struct {
	Name string `json:"name" binding:"required"`
}

// setShipping re-selects the shipping tier.
func (h *Handler) setShipping(c *gin.Context) {
	var req shippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if !h.cartView.SelectShipping(req.Name) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown shipping option",
		})
		return
	}
	c.JSON(http.StatusOK, h.cartView.Render())
}

// checkout is a no-op: there is no payment or order persistence behind
// the storefront.
func (h *Handler) checkout(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{
		"status": "accepted",
	})
}

// listOrders renders the order-history projection of the live cart.
func (h *Handler) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"orders": h.orders.Orders(),
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login exchanges credentials for a stored session token.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.session.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		var apiErr *catalog.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": apiErr.Detail,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Login failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// signup registers a new user.
func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.session.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var apiErr *catalog.APIError
		if errors.As(err, &apiErr) {
			c.JSON(apiErr.Status, gin.H{
				"error": apiErr.Detail,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Signup failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// currentUser renders the account page. An unauthorized response has
// already cleared the token by the time it surfaces here; the client
// is told where to go next.
func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.session.CurrentUser(c.Request.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":    "Not logged in",
				"redirect": "/login",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch profile",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// logout clears the stored token.
func (h *Handler) logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Logout failed",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "logged_out",
		"redirect": "/login",
	})
}

// resultBody maps a three-state snapshot onto a response body.
func resultBody[T any](res fetch.Result[T], dataKey string) gin.H {
	switch res.State() {
	case fetch.StateReady:
		return gin.H{"state": "ready", dataKey: res.Data()}
	case fetch.StateError:
		return gin.H{"state": "error", "error": res.Err().Error()}
	default:
		return gin.H{"state": "loading"}
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
