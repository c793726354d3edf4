package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/session"
	"storefront-service/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog *catalog.Catalog
	cart    *cart.Manager
}

// NewHandler creates a new HTTP handler
func NewHandler(cat *catalog.Catalog, cartManager *cart.Manager) *Handler {
	return &Handler{
		catalog: cat,
		cart:    cartManager,
	}
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
		v1.GET("/facets", h.listFacetCounts)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)

		v1.GET("/wishlist", h.getWishlist)
		v1.POST("/wishlist/:id", h.toggleWishlist)
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

// listProducts filters, sorts and paginates the catalog according to
// the query string, which is also echoed back in canonical form.
func (h *Handler) listProducts(c *gin.Context) {
	_, span := util.StartSpan(c.Request.Context(), "api.listProducts")
	defer span.End()

	now := time.Now()

	view := session.FromQuery(h.catalog, c.Request.URL.Query(), nil, session.DefaultURLDelay)
	defer view.Close()

	results := view.Results(now)
	items, page, totalPages := view.PageItems(now)
	st := view.State()

	c.JSON(http.StatusOK, gin.H{
		"products":        items,
		"total":           len(results),
		"page":            page,
		"per_page":        st.PerPage,
		"total_pages":     totalPages,
		"page_plan":       view.PagePlan(now),
		"sort":            st.Sort,
		"view":            st.View,
		"active_filters":  view.ActiveFilters(),
		"canonical_query": view.CanonicalQuery(),
	})
}

// listFacetCounts returns the would-match count for every vocabulary
// value under the selection in the query string.
func (h *Handler) listFacetCounts(c *gin.Context) {
	_, span := util.StartSpan(c.Request.Context(), "api.listFacetCounts")
	defer span.End()

	now := time.Now()

	view := session.FromQuery(h.catalog, c.Request.URL.Query(), nil, session.DefaultURLDelay)
	defer view.Close()

	c.JSON(http.StatusOK, gin.H{
		"facet_counts":   view.FacetCounts(now),
		"active_filters": view.ActiveFilters(),
	})
}

// getProduct handles get product by ID
func (h *Handler) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	product, ok := h.catalog.ProductByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	c.JSON(http.StatusOK, product)
}

// getCart returns the cart lines plus derived summary values.
func (h *Handler) getCart(c *gin.Context) {
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, gin.H{
		"items":        h.cart.Lines(ctx),
		"unique_count": h.cart.UniqueCount(ctx),
		"totals":       h.cart.Totals(ctx),
	})
}

// AddCartItemRequest is the body for POST /cart/items.
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// addCartItem adds one unit of a product to the cart.
func (h *Handler) addCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	increased, err := h.cart.Add(c.Request.Context(), req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Failed to add to cart",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product_id": req.ProductID,
		"increased":  increased,
	})
}

// UpdateCartItemRequest is the body for PUT /cart/items/:id.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// updateCartItem sets the quantity of an existing line.
func (h *Handler) updateCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.cart.SetQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update cart",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": h.cart.Lines(c.Request.Context()),
	})
}

// removeCartItem drops a line from the cart.
func (h *Handler) removeCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	if err := h.cart.Remove(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to remove from cart",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": h.cart.Lines(c.Request.Context()),
	})
}

// getWishlist returns the wishlist product ids.
func (h *Handler) getWishlist(c *gin.Context) {
	ids := h.cart.WishlistIDs(c.Request.Context())
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"product_ids": ids})
}

// toggleWishlist flips a product's wishlist membership.
func (h *Handler) toggleWishlist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	present, err := h.cart.ToggleWishlist(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to toggle wishlist",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":  id,
		"in_wishlist": present,
	})
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
